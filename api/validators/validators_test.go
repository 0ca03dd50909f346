package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/Wijeboy/CYD-shop-sub000/pkg/errors"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/pagination"
)

type sampleAddress struct {
	City string `json:"city" validate:"required"`
}

type sampleBody struct {
	Name     string        `json:"name" validate:"required"`
	Quantity int           `json:"quantity" validate:"gte=1"`
	Address  sampleAddress `json:"address"`
}

func TestDecodeJSONBodyReportsNestedFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"","quantity":0,"address":{"city":""}}`))

	var body sampleBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details type %T", typed.Details())
	}
	for _, key := range []string{"name", "quantity", "address.city"} {
		if _, ok := details[key]; !ok {
			t.Fatalf("expected detail for %s, got %v", key, details)
		}
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","quantity":1,"address":{"city":"x"},"extra":true}`))
	var body sampleBody
	if err := DecodeJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParsePageParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=20&skip=40", nil)
	params, err := ParsePageParams(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.Limit != 20 || params.Skip != 40 {
		t.Fatalf("unexpected params %+v", params)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	params, err = ParsePageParams(req)
	if err != nil || params.Limit != pagination.DefaultLimit || params.Skip != 0 {
		t.Fatalf("unexpected defaults %+v (%v)", params, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/?limit=abc", nil)
	if _, err := ParsePageParams(req); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello world  ", 5); got != "hello" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestSanitizeStringKeepsRunesWhole(t *testing.T) {
	if got := SanitizeString("héllo", 2); got != "hé" {
		t.Fatalf("unexpected %q", got)
	}
	if got := SanitizeString(" café ", 0); got != "café" {
		t.Fatalf("unexpected %q", got)
	}
}
