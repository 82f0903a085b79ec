package rfq

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"marketplace-portal/apiclient"
	"marketplace-portal/model"
	"marketplace-portal/paging"
)

var ErrActionUnavailable = actionError("action is not available for this offer status")

type actionError string

func (e actionError) Error() string   { return string(e) }
func (e actionError) HTTPStatus() int { return http.StatusConflict }

// Service talks to the RFQ endpoints. It never changes an offer's status
// itself; callers refetch to see what the server decided.
type Service struct {
	client *apiclient.Client
	watch  *Watch
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client, watch: NewWatch()}
}

// List returns one page of the supplier's offers. q.Filter may carry a
// status.
func (s *Service) List(ctx context.Context, supplierID model.ID, q paging.Query) (model.Page[model.RFQOffer], error) {
	body, err := s.client.Get(ctx, fmt.Sprintf("/api/suppliers/%s/rfq-offers", supplierID), q.Values())
	if err != nil {
		return model.Page[model.RFQOffer]{}, err
	}
	page, err := apiclient.DecodePage[model.RFQOffer](body)
	if err != nil {
		return page, err
	}
	s.watch.Observe(page.Content)
	return page, nil
}

func (s *Service) Get(ctx context.Context, id model.ID) (model.RFQOffer, error) {
	body, err := s.client.Get(ctx, "/api/rfq-offers/"+id.String(), nil)
	if err != nil {
		return model.RFQOffer{}, err
	}
	offer, err := apiclient.DecodeItem[model.RFQOffer](body)
	if err != nil {
		return offer, err
	}
	s.watch.Observe([]model.RFQOffer{offer})
	return offer, nil
}

// SubmitQuote sends or edits the supplier's quote.
func (s *Service) SubmitQuote(ctx context.Context, offer model.RFQOffer, quote model.QuoteForm) error {
	if !StatusOf(offer).CanQuote() {
		return ErrActionUnavailable
	}
	_, err := s.client.Post(ctx, fmt.Sprintf("/api/rfq-offers/%s/quote", offer.ID), quote)
	return err
}

// Complete marks an approved offer as fulfilled.
func (s *Service) Complete(ctx context.Context, offer model.RFQOffer) error {
	if !StatusOf(offer).CanComplete() {
		return ErrActionUnavailable
	}
	_, err := s.client.Post(ctx, fmt.Sprintf("/api/rfq-offers/%s/complete", offer.ID), nil)
	return err
}

// Watch remembers the last status seen for each offer and logs when the
// server reports a move the workflow does not allow.
type Watch struct {
	mu   sync.Mutex
	seen map[model.ID]Status
}

func NewWatch() *Watch {
	return &Watch{seen: map[model.ID]Status{}}
}

// Observe records offers and returns how many moved against the workflow.
func (w *Watch) Observe(offers []model.RFQOffer) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	bad := 0
	for _, o := range offers {
		next := StatusOf(o)
		if prev, ok := w.seen[o.ID]; ok && !CanTransition(prev, next) {
			bad++
			slog.Warn("rfq offer moved against the workflow", "offer", o.ID, "from", prev, "to", next)
		}
		w.seen[o.ID] = next
	}
	return bad
}
