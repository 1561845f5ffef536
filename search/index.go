// Package search maintains a Bluge full-text index over user display
// names, backing the user search endpoint.
package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/blugelabs/bluge"
)

const fieldFullName = "fullName"

// UserIndex indexes users by display name. Documents are upserted on
// signup and profile update, so the index follows renames.
type UserIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewUserIndex(path string, log *slog.Logger) (*UserIndex, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, err
	}
	return &UserIndex{writer: writer, log: log}, nil
}

// NewInMemoryUserIndex is used by tests.
func NewInMemoryUserIndex(log *slog.Logger) (*UserIndex, error) {
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	if err != nil {
		return nil, err
	}
	return &UserIndex{writer: writer, log: log}, nil
}

func (i *UserIndex) Close() error {
	return i.writer.Close()
}

// IndexUser upserts one user document.
func (i *UserIndex) IndexUser(userID, fullName string) error {
	doc := bluge.NewDocument(userID).
		AddField(bluge.NewTextField(fieldFullName, fullName).StoreValue())
	return i.writer.Update(doc.ID(), doc)
}

// Search returns ids of users whose display name contains the query term,
// case-insensitively, excluding excludeID. The default analyzer lowercases
// indexed terms, so a lowercased wildcard gives substring semantics per
// name token.
func (i *UserIndex) Search(ctx context.Context, query, excludeID string, limit int) ([]string, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = reader.Close()
	}()

	term := strings.ToLower(strings.TrimSpace(query))
	wildcard := bluge.NewWildcardQuery("*" + term + "*")
	wildcard.SetField(fieldFullName)

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, wildcard))
	if err != nil {
		return nil, err
	}

	var ids []string
	match, err := iterator.Next()
	for err == nil && match != nil {
		var id string
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				id = string(value)
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		if id != "" && id != excludeID {
			ids = append(ids, id)
		}
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}
