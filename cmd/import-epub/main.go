package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"readinghub/internal/books"
	"readinghub/internal/ingest"
	"readinghub/internal/replica"
	"readinghub/internal/storage"
	"readinghub/pkg/database"
	"readinghub/pkg/utils"
)

func main() {
	var (
		level       = flag.String("level", "", "reading level, e.g. 一年级")
		lexile      = flag.String("lexile", "", "lexile measure, e.g. 520L")
		series      = flag.String("series", "", "series name")
		category    = flag.String("category", "", "category")
		description = flag.String("description", "", "book description override")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <book.epub>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	store, _ := storage.New(utils.LoadStorageConfig(), utils.DataDir())
	repo := books.NewRepo(db)
	persister := books.NewDualWriter(repo, replica.New(utils.LoadReplicaConfig()))
	importer := ingest.New(store, persister)

	id, err := importer.ImportFile(ctx, path, ingest.Options{
		Level:       *level,
		Lexile:      *lexile,
		Series:      *series,
		Category:    *category,
		Description: *description,
	})
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	book, err := repo.GetByID(ctx, id)
	if err != nil || book == nil {
		log.Fatalf("imported book %s not readable back: %v", id, err)
	}
	chapters, err := repo.Chapters(ctx, id)
	if err != nil {
		log.Fatalf("read chapters: %v", err)
	}
	vocab, err := repo.Vocabulary(ctx, id, 100)
	if err != nil {
		log.Fatalf("read vocabulary: %v", err)
	}

	log.Printf("✅ imported %q by %s", book.Title, book.Author)
	log.Printf("   - Chapters: %d", len(chapters))
	log.Printf("   - Total words: %d", book.WordCount)
	log.Printf("   - High-freq vocabulary: %d", len(vocab))
	log.Printf("   - Book ID: %s", id)
}
