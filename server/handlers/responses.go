package handlers

import (
	"time"

	"github.com/ebogdum/browsefs/browser"
	"github.com/ebogdum/browsefs/connectors"
)

// EntryInfo describes one child entry of a resolved node.
type EntryInfo struct {
	Name  string    `json:"name"`
	Path  string    `json:"path"`
	Type  string    `json:"type"` // "file" or "dir"
	Size  int64     `json:"size,omitempty"`
	MTime time.Time `json:"mtime,omitempty"`
}

// NodeInfo describes the node a walk reached, including its pagination
// cursor and inline error state.
type NodeInfo struct {
	Name         string      `json:"name"`
	Path         string      `json:"path"`
	Type         string      `json:"type"`
	Segments     []string    `json:"segments"`
	Loaded       bool        `json:"loaded"`
	CurrentPage  int         `json:"current_page"`
	HasMorePages bool        `json:"has_more_pages"`
	Error        string      `json:"error,omitempty"`
	Children     []EntryInfo `json:"children"`
}

func entryType(k connectors.EntryKind) string {
	if k == connectors.EntryDir {
		return "dir"
	}
	return "file"
}

func nodeInfo(n *browser.EntryNode) NodeInfo {
	children := n.Children()
	infos := make([]EntryInfo, 0, len(children))
	for _, c := range children {
		infos = append(infos, EntryInfo{
			Name:  c.Name(),
			Path:  c.Path(),
			Type:  entryType(c.Kind()),
			Size:  c.Size(),
			MTime: c.MTime(),
		})
	}

	info := NodeInfo{
		Name:         n.Name(),
		Path:         n.Path(),
		Type:         entryType(n.Kind()),
		Segments:     n.Hierarchy(),
		Loaded:       n.Loaded(),
		CurrentPage:  n.CurrentPage(),
		HasMorePages: n.HasMore(),
		Children:     infos,
	}
	if hasErr, msg := n.Err(); hasErr {
		info.Error = msg
	}
	return info
}
