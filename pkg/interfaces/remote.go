package interfaces

import (
	"context"

	"github.com/goliatone/go-docsync/blocks"
)

// DocumentHandle identifies a remote document after creation.
type DocumentHandle struct {
	DocumentID string
	URL        string
	RevisionID string
}

// BlockRelation maps a client-side temporary block id to the id the server
// assigned when the block was created. Relations arrive unordered.
type BlockRelation struct {
	TemporaryID string
	BlockID     string
}

// CreatedBlock is one server-side block echoed back from a creation call.
type CreatedBlock struct {
	BlockID string
	Kind    blocks.Kind
}

// CreateBlocksResult carries the outcome of one block-creation request.
type CreateBlocksResult struct {
	Blocks     []CreatedBlock
	Relations  []BlockRelation
	RevisionID string
}

// BlockUpdate attaches an uploaded media token to an existing server block.
type BlockUpdate struct {
	BlockID    string
	MediaToken string
}

// ChildPage is one page of a block's direct children.
type ChildPage struct {
	Items         []CreatedBlock
	NextPageToken string
	HasMore       bool
}

// DocumentAPI is the remote rich-document service contract. Implementations
// translate these calls into HTTP requests; callers treat every method as
// blocking and context-aware.
type DocumentAPI interface {
	// CreateDocument creates an empty document, optionally inside a folder.
	CreateDocument(ctx context.Context, title, folderToken string) (DocumentHandle, error)

	// CreateBlocks attaches the given direct children (in order) under the
	// anchor block, carrying the full descendant set in the same request.
	CreateBlocks(ctx context.Context, documentID, anchorID string, children, descendants []*blocks.ContentBlock) (CreateBlocksResult, error)

	// UpdateBlocks applies a batch of media-token updates.
	UpdateBlocks(ctx context.Context, documentID string, updates []BlockUpdate) error

	// UploadMedia uploads raw bytes scoped to the owning server block and
	// returns the media token to attach via UpdateBlocks.
	UploadMedia(ctx context.Context, ownerBlockID, filename string, data []byte) (string, error)

	// DeleteBlock removes one block (and its subtree) from the document.
	DeleteBlock(ctx context.Context, documentID, blockID string) error

	// ListChildren pages through a block's direct children.
	ListChildren(ctx context.Context, documentID, blockID, pageToken string) (ChildPage, error)

	// TransferOwnership hands the document to another user.
	TransferOwnership(ctx context.Context, documentID, targetUser string) error
}
