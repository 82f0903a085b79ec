package rfq

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"marketplace-portal/apiclient"
	"marketplace-portal/model"
	"marketplace-portal/paging"
)

func TestStatus_Capabilities(t *testing.T) {
	cases := []struct {
		s                     Status
		quote, complete, chat bool
	}{
		{Pending, true, false, false},
		{Responded, true, false, true},
		{Approved, false, true, true},
		{Completed, false, false, true},
		{Rejected, false, false, true},
	}
	for _, tc := range cases {
		if tc.s.CanQuote() != tc.quote || tc.s.CanComplete() != tc.complete || tc.s.CanChat() != tc.chat {
			t.Fatalf("%s: quote=%v complete=%v chat=%v", tc.s, tc.s.CanQuote(), tc.s.CanComplete(), tc.s.CanChat())
		}
	}
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]Status{
		{Pending, Responded}, {Pending, Rejected}, {Responded, Approved},
		{Approved, Completed}, {Pending, Approved}, {Completed, Completed},
	}
	for _, p := range allowed {
		if !CanTransition(p[0], p[1]) {
			t.Fatalf("%s → %s should be allowed", p[0], p[1])
		}
	}

	denied := [][2]Status{
		{Responded, Pending}, {Completed, Approved}, {Approved, Rejected},
		{Rejected, Pending}, {Rejected, Responded}, {Responded, Rejected},
	}
	for _, p := range denied {
		if CanTransition(p[0], p[1]) {
			t.Fatalf("%s → %s should be denied", p[0], p[1])
		}
	}
}

func TestActionsFor_CompleteButton(t *testing.T) {
	pending := ActionsFor(model.RFQOffer{Status: "PENDING"})
	if pending.Complete.Visible {
		t.Fatalf("pending offer must not expose Complete")
	}
	if pending.Chat.Visible {
		t.Fatalf("chat must be hidden while pending")
	}

	approved := ActionsFor(model.RFQOffer{Status: "APPROVED"})
	if !approved.Complete.Visible || !approved.Complete.Enabled || approved.Complete.Label != "Complete" {
		t.Fatalf("approved offer needs one enabled Complete button, got %+v", approved.Complete)
	}
	if approved.Quote.Visible {
		t.Fatalf("quote must be hidden once approved")
	}

	completed := ActionsFor(model.RFQOffer{Status: "COMPLETED"})
	if !completed.Complete.Visible || completed.Complete.Enabled || completed.Complete.Label != "Completed" {
		t.Fatalf("completed offer shows a disabled marker, got %+v", completed.Complete)
	}

	responded := ActionsFor(model.RFQOffer{Status: "RESPONDED"})
	if responded.Quote.Label != "Edit Quote" || !responded.Chat.Visible {
		t.Fatalf("unexpected responded actions %+v", responded)
	}
}

// fakeRFQ is an upstream holding a single offer.
type fakeRFQ struct {
	mu          sync.Mutex
	offer       model.RFQOffer
	completions int
}

func (f *fakeRFQ) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/suppliers/{sid}/rfq-offers", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, map[string]any{
			"content":       []model.RFQOffer{f.offer},
			"totalElements": 1, "totalPages": 1, "size": 10, "number": 0,
		})
	})
	mux.HandleFunc("POST /api/rfq-offers/{id}/complete", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.completions++
		f.offer.Status = "COMPLETED"
		writeJSON(w, map[string]any{"data": f.offer})
	})
	mux.HandleFunc("POST /api/rfq-offers/{id}/quote", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.offer.Status = "RESPONDED"
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func TestService_CompleteFlow(t *testing.T) {
	up := &fakeRFQ{offer: model.RFQOffer{ID: "7", SupplierID: "3", Status: "PENDING", Quantity: 10}}
	srv := httptest.NewServer(up.handler())
	defer srv.Close()

	svc := NewService(apiclient.New(srv.URL))
	ctx := context.Background()
	list := paging.NewController("rfq", 10, func(ctx context.Context, q paging.Query) (model.Page[model.RFQOffer], error) {
		return svc.List(ctx, "3", q)
	})
	if err := list.Refetch(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	offer := list.Snapshot().Items[0]
	if ActionsFor(offer).Complete.Visible {
		t.Fatalf("pending offer must not expose Complete")
	}
	if err := svc.Complete(ctx, offer); !errors.Is(err, ErrActionUnavailable) {
		t.Fatalf("expected ErrActionUnavailable, got %v", err)
	}

	// the customer approves on their side
	up.mu.Lock()
	up.offer.Status = "APPROVED"
	up.mu.Unlock()
	list.Refetch(ctx)
	offer = list.Snapshot().Items[0]
	if a := ActionsFor(offer).Complete; !a.Visible || !a.Enabled {
		t.Fatalf("approved offer should expose an enabled Complete, got %+v", a)
	}

	if err := svc.Complete(ctx, offer); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if up.completions != 1 {
		t.Fatalf("expected one completion POST, got %d", up.completions)
	}
	if err := list.Refetch(ctx); err != nil {
		t.Fatalf("refetch: %v", err)
	}
	offer = list.Snapshot().Items[0]
	if offer.Status != "COMPLETED" {
		t.Fatalf("expected server status COMPLETED, got %s", offer.Status)
	}
	if a := ActionsFor(offer).Complete; !a.Visible || a.Enabled {
		t.Fatalf("completed offer should show a disabled indicator, got %+v", a)
	}
}

func TestService_SubmitQuoteRequiresQuotableStatus(t *testing.T) {
	up := &fakeRFQ{offer: model.RFQOffer{ID: "8", Status: "PENDING"}}
	srv := httptest.NewServer(up.handler())
	defer srv.Close()
	svc := NewService(apiclient.New(srv.URL))

	if err := svc.SubmitQuote(context.Background(), up.offer, model.QuoteForm{AvailableQuantity: 2, EstimatedDelivery: "2026-11-01"}); err != nil {
		t.Fatalf("quote in PENDING should be allowed: %v", err)
	}
	if err := svc.SubmitQuote(context.Background(), model.RFQOffer{ID: "8", Status: "APPROVED"}, model.QuoteForm{}); !errors.Is(err, ErrActionUnavailable) {
		t.Fatalf("quote after approval should be refused, got %v", err)
	}
}

func TestWatch_FlagsBackwardsMove(t *testing.T) {
	w := NewWatch()
	w.Observe([]model.RFQOffer{{ID: "1", Status: "APPROVED"}})
	if bad := w.Observe([]model.RFQOffer{{ID: "1", Status: "PENDING"}}); bad != 1 {
		t.Fatalf("expected one violation, got %d", bad)
	}
	if bad := w.Observe([]model.RFQOffer{{ID: "1", Status: "RESPONDED"}}); bad != 0 {
		t.Fatalf("forward move should be fine, got %d", bad)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
