package remote

import (
	"github.com/goliatone/go-docsync/blocks"
	"github.com/goliatone/go-docsync/pkg/interfaces"
)

// envelope is the common response wrapper: code zero means success, any
// other value carries a machine-readable error string in errCode.
type envelope struct {
	Code    int    `json:"code"`
	ErrCode string `json:"error_code,omitempty"`
	Message string `json:"msg,omitempty"`
}

type tokenRequest struct {
	AppID     string `json:"app_id"`
	AppSecret string `json:"app_secret"`
}

type tokenResponse struct {
	envelope
	Data struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	} `json:"data"`
}

type createDocumentRequest struct {
	Title       string `json:"title,omitempty"`
	FolderToken string `json:"folder_token,omitempty"`
}

type createDocumentResponse struct {
	envelope
	Data struct {
		DocumentID string `json:"document_id"`
		RevisionID string `json:"revision_id"`
	} `json:"data"`
}

type wireStyle struct {
	Bold          bool   `json:"bold,omitempty"`
	Italic        bool   `json:"italic,omitempty"`
	Strikethrough bool   `json:"strikethrough,omitempty"`
	Underline     bool   `json:"underline,omitempty"`
	InlineCode    bool   `json:"inline_code,omitempty"`
	Link          string `json:"link,omitempty"`
}

type wireRun struct {
	Content string     `json:"content"`
	Style   *wireStyle `json:"style,omitempty"`
}

type wireTable struct {
	Rows         int   `json:"rows"`
	Columns      int   `json:"columns"`
	ColumnWidths []int `json:"column_widths,omitempty"`
}

type wireBlock struct {
	BlockID      string     `json:"block_id"`
	Kind         string     `json:"kind"`
	Runs         []wireRun  `json:"runs,omitempty"`
	HeadingLevel int        `json:"heading_level,omitempty"`
	Done         bool       `json:"done,omitempty"`
	Language     string     `json:"language,omitempty"`
	Table        *wireTable `json:"table,omitempty"`
	Children     []string   `json:"children,omitempty"`
}

type createBlocksRequest struct {
	Children    []wireBlock `json:"children"`
	Descendants []wireBlock `json:"descendants,omitempty"`
}

type createBlocksResponse struct {
	envelope
	Data struct {
		Blocks []struct {
			BlockID string `json:"block_id"`
			Kind    string `json:"kind"`
		} `json:"blocks"`
		Relations []struct {
			TemporaryID string `json:"temporary_id"`
			BlockID     string `json:"block_id"`
		} `json:"relations"`
		RevisionID string `json:"revision_id"`
	} `json:"data"`
}

type updateBlocksRequest struct {
	Updates []struct {
		BlockID    string `json:"block_id"`
		MediaToken string `json:"media_token"`
	} `json:"updates"`
}

type uploadMediaResponse struct {
	envelope
	Data struct {
		MediaToken string `json:"media_token"`
	} `json:"data"`
}

type listChildrenResponse struct {
	envelope
	Data struct {
		Items []struct {
			BlockID string `json:"block_id"`
			Kind    string `json:"kind"`
		} `json:"items"`
		NextPageToken string `json:"next_page_token"`
		HasMore       bool   `json:"has_more"`
	} `json:"data"`
}

type transferRequest struct {
	TargetUser string `json:"target_user"`
}

func encodeBlocks(in []*blocks.ContentBlock) []wireBlock {
	if len(in) == 0 {
		return nil
	}
	out := make([]wireBlock, 0, len(in))
	for _, block := range in {
		out = append(out, encodeBlock(block))
	}
	return out
}

func encodeBlock(block *blocks.ContentBlock) wireBlock {
	wb := wireBlock{
		BlockID:      block.ID,
		Kind:         string(block.Kind),
		HeadingLevel: block.HeadingLevel,
		Done:         block.Done,
		Language:     block.Language,
		Children:     block.Children,
	}
	for _, run := range block.Runs {
		wr := wireRun{Content: run.Content}
		if !run.Style.IsZero() {
			wr.Style = &wireStyle{
				Bold:          run.Style.Bold,
				Italic:        run.Style.Italic,
				Strikethrough: run.Style.Strikethrough,
				Underline:     run.Style.Underline,
				InlineCode:    run.Style.InlineCode,
				Link:          run.Style.Link,
			}
		}
		wb.Runs = append(wb.Runs, wr)
	}
	if block.Table != nil {
		wb.Table = &wireTable{
			Rows:         block.Table.Rows,
			Columns:      block.Table.Columns,
			ColumnWidths: block.Table.ColumnWidths,
		}
	}
	return wb
}

func decodeCreateBlocks(resp createBlocksResponse) interfaces.CreateBlocksResult {
	result := interfaces.CreateBlocksResult{RevisionID: resp.Data.RevisionID}
	for _, item := range resp.Data.Blocks {
		result.Blocks = append(result.Blocks, interfaces.CreatedBlock{
			BlockID: item.BlockID,
			Kind:    blocks.Kind(item.Kind),
		})
	}
	for _, rel := range resp.Data.Relations {
		result.Relations = append(result.Relations, interfaces.BlockRelation{
			TemporaryID: rel.TemporaryID,
			BlockID:     rel.BlockID,
		})
	}
	return result
}
