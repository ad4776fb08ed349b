package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ebogdum/browsefs/browser"
	"github.com/ebogdum/browsefs/connectors"
	"github.com/ebogdum/browsefs/internal/pathutil"
)

// PreviewResponse is the body returned by the preview endpoint.
type PreviewResponse struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// V1Preview handles GET /v1/preview?path=... requests. It resolves the path
// to a file node and returns a bounded content snippet.
func V1Preview(resolver *browser.Resolver, registry *connectors.Registry, walkTimeout time.Duration, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), walkTimeout)
		defer cancel()

		rawPath := r.URL.Query().Get("path")
		if err := pathutil.Validate(rawPath); err != nil {
			SendErrorResponse(w, logger, err, http.StatusBadRequest)
			return
		}

		res, err := resolveQuery(resolver, rawPath, r.URL.Query().Get("kind"))
		if err != nil {
			SendErrorResponse(w, logger, err, http.StatusBadRequest)
			return
		}

		fetcher, ok := registry.FetcherFor(res.Kind)
		if !ok {
			SendErrorResponse(w, logger, connectors.ErrUnresolvedConnector, http.StatusNotFound)
			return
		}

		tree := browser.NewTree(res.Kind, res.RootPath, fetcher, logger)
		walker := browser.NewWalker(logger)
		reached := walker.Descend(ctx, tree.Root(), res.Segments)

		depth := len(reached.Hierarchy()) - len(tree.Root().Hierarchy())
		if depth != len(res.Segments) || reached.Kind() != connectors.EntryFile {
			SendErrorResponse(w, logger, fmt.Errorf("file %q not found", rawPath), http.StatusNotFound)
			return
		}

		if err := reached.Open(ctx); err != nil {
			SendErrorResponse(w, logger, err, http.StatusBadGateway)
			return
		}

		resp := PreviewResponse{
			Path:    reached.Path(),
			Content: string(reached.Preview()),
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Error("Failed to encode preview response", zap.Error(err))
		}
	}
}
