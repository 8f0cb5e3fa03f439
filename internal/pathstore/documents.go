package pathstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dgallion1/gongwen/internal/check"
	"github.com/dgallion1/gongwen/internal/doctree"
	"github.com/dgallion1/gongwen/internal/parser"
)

// Key prefixes.
const (
	DocumentsPrefix = "gongwen/documents"
	TopicsPrefix    = "gongwen/topics"
	HashesPrefix    = "gongwen/hashes"
)

// Document is one stored document: its laid-out body, fields and the
// findings of the last check.
type Document struct {
	ID        string                   `json:"id"`
	Filename  string                   `json:"filename,omitempty"`
	Title     string                   `json:"title"`
	Body      []doctree.Block          `json:"body"`
	Fields    doctree.StructuredFields `json:"structuredFields"`
	Issues    []check.Issue            `json:"issues"`
	Report    *parser.ImportReport     `json:"importReport,omitempty"`
	UpdatedAt time.Time                `json:"updatedAt"`
}

// DocumentSummary is a list entry.
type DocumentSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	TopicID   string    `json:"topicId,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DocumentKey is the store path of a document.
func DocumentKey(id string) string {
	return DocumentsPrefix + "/" + id
}

// SaveDocument stores a document and, when it belongs to a topic, links it
// to the topic node.
func (c *Client) SaveDocument(ctx context.Context, doc *Document) error {
	if doc.ID == "" {
		return fmt.Errorf("save document: empty id")
	}
	key := DocumentKey(doc.ID)
	if err := c.PutNode(ctx, key, NodeRequest{Value: doc, MergeMode: "replace", Source: "gongwen"}); err != nil {
		return fmt.Errorf("save document %s: %w", doc.ID, err)
	}
	if topic := doc.Fields.TopicID; topic != "" {
		link := LinkRequest{
			From:    key,
			To:      TopicsPrefix + "/" + topic,
			Weight:  1,
			Summary: doc.Fields.TopicName,
		}
		if err := c.PutLink(ctx, link); err != nil {
			return fmt.Errorf("link document %s to topic %s: %w", doc.ID, topic, err)
		}
	}
	return nil
}

// LoadDocument fetches a document. A missing document yields nil, nil.
func (c *Client) LoadDocument(ctx context.Context, id string) (*Document, error) {
	node, err := c.GetNode(ctx, DocumentKey(id))
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", id, err)
	}
	if node == nil {
		return nil, nil
	}
	var doc Document
	if err := json.Unmarshal(node.Value, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	return &doc, nil
}

// DeleteDocument removes a document.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	if err := c.DeleteNode(ctx, DocumentKey(id), true); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

// ListDocuments returns up to limit document summaries.
func (c *Client) ListDocuments(ctx context.Context, limit int) ([]DocumentSummary, error) {
	nodes, err := c.ListChildren(ctx, DocumentsPrefix, limit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	out := make([]DocumentSummary, 0, len(nodes))
	for _, n := range nodes {
		var doc Document
		if err := json.Unmarshal(n.Value, &doc); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", n.Key, err)
		}
		if doc.ID == "" {
			doc.ID = strings.TrimPrefix(n.Key, DocumentsPrefix+"/")
		}
		out = append(out, DocumentSummary{
			ID:        doc.ID,
			Title:     doc.Title,
			TopicID:   doc.Fields.TopicID,
			UpdatedAt: doc.UpdatedAt,
		})
	}
	return out, nil
}

// FindByHash returns the id of the document imported from content with the
// given hash, if any.
func (c *Client) FindByHash(ctx context.Context, hash string) (string, bool, error) {
	node, err := c.GetNode(ctx, HashesPrefix+"/"+hash)
	if err != nil {
		return "", false, fmt.Errorf("find hash %s: %w", hash, err)
	}
	if node == nil {
		return "", false, nil
	}
	var entry struct {
		DocID string `json:"docId"`
	}
	if err := json.Unmarshal(node.Value, &entry); err != nil {
		return "", false, fmt.Errorf("decode hash %s: %w", hash, err)
	}
	return entry.DocID, entry.DocID != "", nil
}

// PutHash records that content with the given hash was imported as docID.
func (c *Client) PutHash(ctx context.Context, hash, docID string) error {
	err := c.PutNode(ctx, HashesPrefix+"/"+hash, NodeRequest{
		Value:     map[string]string{"docId": docID},
		MergeMode: "replace",
		Source:    "gongwen",
	})
	if err != nil {
		return fmt.Errorf("put hash %s: %w", hash, err)
	}
	return nil
}
