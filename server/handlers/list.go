package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ebogdum/browsefs/browser"
	"github.com/ebogdum/browsefs/connectors"
	"github.com/ebogdum/browsefs/internal/pathutil"
)

// V1List handles GET /v1/list?path=...&page=...&filter=... requests. It
// resolves the path to a directory node and returns the requested listing
// page. A path that does not fully resolve is a 404.
func V1List(resolver *browser.Resolver, registry *connectors.Registry, walkTimeout time.Duration, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), walkTimeout)
		defer cancel()

		rawPath := r.URL.Query().Get("path")
		if err := pathutil.Validate(rawPath); err != nil {
			SendErrorResponse(w, logger, err, http.StatusBadRequest)
			return
		}

		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			parsed, err := strconv.Atoi(p)
			if err != nil || parsed < 1 {
				SendErrorResponse(w, logger, fmt.Errorf("invalid page %q", p), http.StatusBadRequest)
				return
			}
			page = parsed
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
		if depth != len(res.Segments) {
			SendErrorResponse(w, logger, fmt.Errorf("path %q not found past %q", rawPath, reached.Path()), http.StatusNotFound)
			return
		}

		if filter := r.URL.Query().Get("filter"); filter != "" {
			if err := reached.SetFilter(ctx, filter); err != nil {
				SendErrorResponse(w, logger, err, http.StatusBadGateway)
				return
			}
		}
		if page != reached.CurrentPage() || !reached.Loaded() {
			if err := reached.LoadPage(ctx, page); err != nil {
				SendErrorResponse(w, logger, err, http.StatusBadGateway)
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(nodeInfo(reached)); err != nil {
			logger.Error("Failed to encode list response", zap.Error(err))
		}
	}
}
