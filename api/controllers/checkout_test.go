package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/dispatchday/dispatchday-backend/api/middleware"
	"github.com/dispatchday/dispatchday-backend/internal/checkout"
	"github.com/dispatchday/dispatchday-backend/pkg/availability"
	"github.com/dispatchday/dispatchday-backend/pkg/enums"
	pkgerrors "github.com/dispatchday/dispatchday-backend/pkg/errors"
	"github.com/dispatchday/dispatchday-backend/pkg/logger"
)

type testCheckoutService struct {
	resolveFieldsFn func(ctx context.Context, storeID uuid.UUID, cart checkout.CartSnapshot) (*checkout.FieldsResult, error)
	resolveDatesFn  func(ctx context.Context, storeID uuid.UUID, method enums.FulfillmentMethod) (*checkout.DatesResult, error)
	validateFn      func(ctx context.Context, storeID uuid.UUID, input checkout.SubmissionInput) error
}

func (s *testCheckoutService) ResolveFields(ctx context.Context, storeID uuid.UUID, cart checkout.CartSnapshot) (*checkout.FieldsResult, error) {
	if s.resolveFieldsFn != nil {
		return s.resolveFieldsFn(ctx, storeID, cart)
	}
	return &checkout.FieldsResult{}, nil
}

func (s *testCheckoutService) ResolveDates(ctx context.Context, storeID uuid.UUID, method enums.FulfillmentMethod) (*checkout.DatesResult, error) {
	if s.resolveDatesFn != nil {
		return s.resolveDatesFn(ctx, storeID, method)
	}
	return &checkout.DatesResult{Method: method}, nil
}

func (s *testCheckoutService) ValidateSubmission(ctx context.Context, storeID uuid.UUID, input checkout.SubmissionInput) error {
	if s.validateFn != nil {
		return s.validateFn(ctx, storeID, input)
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func storefrontRequest(method, target, body string, storeID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(middleware.WithStoreID(req.Context(), storeID.String()))
}

func TestCheckoutDates(t *testing.T) {
	storeID := uuid.New()
	earliest := availability.NewDate(2025, 3, 12)
	svc := &testCheckoutService{
		resolveDatesFn: func(_ context.Context, sid uuid.UUID, method enums.FulfillmentMethod) (*checkout.DatesResult, error) {
			if sid != storeID {
				t.Fatalf("unexpected store %s", sid)
			}
			if method != enums.FulfillmentMethodDelivery {
				t.Fatalf("unexpected method %s", method)
			}
			return &checkout.DatesResult{Method: method, Earliest: &earliest}, nil
		},
	}

	req := storefrontRequest(http.MethodPost, "/api/v1/checkout/dates", `{"method":"delivery"}`, storeID)
	resp := httptest.NewRecorder()
	CheckoutDates(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "2025-03-12") {
		t.Fatalf("expected earliest date in body, got %s", resp.Body.String())
	}
}

func TestCheckoutDatesRejectsBadMethod(t *testing.T) {
	req := storefrontRequest(http.MethodPost, "/api/v1/checkout/dates", `{"method":"teleport"}`, uuid.New())
	resp := httptest.NewRecorder()
	CheckoutDates(&testCheckoutService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutDatesMissingStoreContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/dates", strings.NewReader(`{"method":"delivery"}`))
	resp := httptest.NewRecorder()
	CheckoutDates(&testCheckoutService{}, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCheckoutValidatePropagatesViolations(t *testing.T) {
	svc := &testCheckoutService{
		validateFn: func(_ context.Context, _ uuid.UUID, input checkout.SubmissionInput) error {
			if input.ScheduledDate.String() != "2025-03-12" {
				t.Fatalf("unexpected date %s", input.ScheduledDate)
			}
			return pkgerrors.New(pkgerrors.CodeValidation, "date is not available")
		},
	}

	body := `{"method":"delivery","scheduled_date":"2025-03-12","field_values":{"gate_code":"1"}}`
	req := storefrontRequest(http.MethodPost, "/api/v1/checkout/validate", body, uuid.New())
	resp := httptest.NewRecorder()
	CheckoutValidate(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "date is not available") {
		t.Fatalf("expected violation message, got %s", resp.Body.String())
	}
}

func TestCheckoutValidateSuccess(t *testing.T) {
	body := `{"method":"pickup","scheduled_date":"2025-03-14"}`
	req := storefrontRequest(http.MethodPost, "/api/v1/checkout/validate", body, uuid.New())
	resp := httptest.NewRecorder()
	CheckoutValidate(&testCheckoutService{}, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"valid":true`) {
		t.Fatalf("expected valid flag, got %s", resp.Body.String())
	}
}
