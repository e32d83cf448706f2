package admin

import "errors"

var errBookNotFound = errors.New("book not found")
