package storage

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"readinghub/pkg/utils"
)

// OSS stores images in an Aliyun OSS bucket through its signed REST API.
// Every Put that fails against the bucket falls back to the local store, so
// the import pipeline only ever sees a hard failure when both backends are
// down.
type OSS struct {
	cfg    utils.StorageConfig
	local  *Local
	client *http.Client
}

func NewOSS(cfg utils.StorageConfig, local *Local) *OSS {
	return &OSS{
		cfg:    cfg,
		local:  local,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (o *OSS) Put(data []byte, objectName string) (string, error) {
	if !validObjectName(objectName) {
		return "", fmt.Errorf("invalid object name %q", objectName)
	}
	if err := o.putObject(objectName, data); err != nil {
		log.Printf("[storage] oss upload %s failed, using local fallback: %v", objectName, err)
		return o.local.Put(data, objectName)
	}
	return fmt.Sprintf("https://%s.%s/%s", o.cfg.Bucket, o.hostEndpoint(), objectName), nil
}

// DeleteAll removes every object under the book's prefix, both remote and
// in the local fallback directory. It reports false when any remote object
// could not be removed.
func (o *OSS) DeleteAll(bookID string) bool {
	ok := o.local.DeleteAll(bookID)
	keys, err := o.listObjects(bookID + "/")
	if err != nil {
		log.Printf("[storage] oss list %s/: %v", bookID, err)
		return false
	}
	for _, key := range keys {
		if err := o.deleteObject(key); err != nil {
			log.Printf("[storage] oss delete %s: %v", key, err)
			ok = false
		}
	}
	return ok
}

func (o *OSS) putObject(objectName string, data []byte) error {
	req, err := o.newRequest(http.MethodPut, objectName, "", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.ContentLength = int64(len(data))
	return o.do(req)
}

func (o *OSS) deleteObject(objectName string) error {
	req, err := o.newRequest(http.MethodDelete, objectName, "", nil)
	if err != nil {
		return err
	}
	return o.do(req)
}

type listBucketResult struct {
	Contents []struct {
		Key string `xml:"Key"`
	} `xml:"Contents"`
}

func (o *OSS) listObjects(prefix string) ([]string, error) {
	req, err := o.newRequest(http.MethodGet, "", "prefix="+url.QueryEscape(prefix), nil)
	if err != nil {
		return nil, err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oss list: status %d", resp.StatusCode)
	}
	var result listBucketResult
	if err := xml.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("oss list: %w", err)
	}
	keys := make([]string, 0, len(result.Contents))
	for _, c := range result.Contents {
		keys = append(keys, c.Key)
	}
	return keys, nil
}

// newRequest builds a request signed per the OSS header signature scheme:
// base64(hmac-sha1(secret, VERB\n\nContent-Type\nDate\n/bucket/object)).
func (o *OSS) newRequest(method, objectName, query string, body io.Reader) (*http.Request, error) {
	u := fmt.Sprintf("https://%s.%s/%s", o.cfg.Bucket, o.hostEndpoint(), objectName)
	if query != "" {
		u += "?" + query
	}
	req, err := http.NewRequest(method, u, body)
	if err != nil {
		return nil, err
	}
	contentType := ""
	if method == http.MethodPut {
		contentType = "application/octet-stream"
		req.Header.Set("Content-Type", contentType)
	}
	date := time.Now().UTC().Format(http.TimeFormat)
	req.Header.Set("Date", date)

	resource := "/" + o.cfg.Bucket + "/" + objectName
	msg := method + "\n\n" + contentType + "\n" + date + "\n" + resource
	mac := hmac.New(sha1.New, []byte(o.cfg.AccessKeySecret))
	mac.Write([]byte(msg))
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	req.Header.Set("Authorization", "OSS "+o.cfg.AccessKeyID+":"+sig)
	return req, nil
}

func (o *OSS) do(req *http.Request) error {
	resp, err := o.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("oss %s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

func (o *OSS) hostEndpoint() string {
	ep := strings.TrimPrefix(o.cfg.Endpoint, "https://")
	return strings.TrimPrefix(ep, "http://")
}
