package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cploetz77/port-to-port-map-generator/internal/engine"
	domain "github.com/cploetz77/port-to-port-map-generator/pkg/types"
)

// OrderResolver resolves the port list of a raw order webhook body.
type OrderResolver interface {
	Run(ctx context.Context, body []byte) (*engine.Resolution, error)
}

// ResolveHandler runs resolutions without recording them.
type ResolveHandler struct {
	resolver OrderResolver
}

// NewResolveHandler creates a new ResolveHandler.
func NewResolveHandler(r OrderResolver) *ResolveHandler {
	return &ResolveHandler{resolver: r}
}

// ResolveInput carries an order paid webhook body verbatim.
type ResolveInput struct {
	RawBody []byte
}

// ResolveOutput is the response body for the resolve endpoint.
type ResolveOutput struct {
	Body struct {
		Result   *domain.ResolutionResult  `json:"result"   doc:"Resolved port list and its source"`
		Fields   []domain.LineItemProperty `json:"fields"   doc:"Custom fields read from the first line item"`
		Resolved domain.ResolvedFields     `json:"resolved" doc:"Booking fields derived from the custom fields"`
	}
}

// Resolve runs the full resolution for an order body. Nothing is recorded
// and no notifications are sent.
func (h *ResolveHandler) Resolve(ctx context.Context, input *ResolveInput) (*ResolveOutput, error) {
	res, err := h.resolver.Run(ctx, input.RawBody)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("resolution failed: " + err.Error())
	}

	out := &ResolveOutput{}
	out.Body.Result = res.Result
	out.Body.Fields = res.Fields
	out.Body.Resolved = res.Resolved
	return out, nil
}

// RegisterResolveRoutes registers the dry-run resolve endpoint with the Huma API.
func RegisterResolveRoutes(api huma.API, h *ResolveHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "resolve-order",
		Method:      http.MethodPost,
		Path:        "/api/v1/resolve",
		Summary:     "Resolve an order's ports",
		Description: "Resolves the port list for an order paid webhook body without recording the event.",
		Tags:        []string{"resolve"},
		Errors:      []int{http.StatusUnprocessableEntity},
	}, h.Resolve)
}
