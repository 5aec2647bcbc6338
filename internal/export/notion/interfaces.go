package notion

import (
	"context"

	"github.com/jomei/notionapi"
)

// Service is the slice of the Notion API the sync needs. Tests substitute
// an in-memory fake.
type Service interface {
	// CreatePage creates a page in a database with the given properties.
	CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)

	// UpdatePage replaces properties on an existing page.
	UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error)

	// QueryDatabase queries a database with the given filter.
	QueryDatabase(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)

	// ArchivePage archives a page. Notion has no hard delete; archiving is
	// how stale pages disappear from the database view.
	ArchivePage(ctx context.Context, pageID string) error
}
