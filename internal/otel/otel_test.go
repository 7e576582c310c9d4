package otel

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		raw  string
		want map[string]string
	}{
		{"", map[string]string{}},
		{"Authorization=Bearer abc", map[string]string{"Authorization": "Bearer abc"}},
		{" a = 1 , b=2 ", map[string]string{"a": "1", "b": "2"}},
		{"token=a=b", map[string]string{"token": "a=b"}},
		{"novalue,=orphan,x=", map[string]string{"x": ""}},
	}
	for _, tt := range tests {
		if got := parseHeaders(tt.raw); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseHeaders(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseEndpoint(t *testing.T) {
	got, err := parseEndpoint("http://collector:4318/otel/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := otlpTarget{host: "collector:4318", basePath: "/otel", insecure: true}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	got, err = parseEndpoint("https://api.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.insecure || got.basePath != "" {
		t.Errorf("https endpoint parsed as %+v", got)
	}

	if _, err := parseEndpoint("not a url"); err == nil {
		t.Error("expected error for endpoint without host")
	}
}

func TestInitWithoutEndpointIsNoop(t *testing.T) {
	tel, err := Init(context.Background(), OTELConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tel.Enabled() {
		t.Error("telemetry without endpoint should not be enabled")
	}
	if tel.Metrics == nil || tel.Tracer == nil {
		t.Fatal("no-op telemetry should still provide instruments")
	}
	tel.Metrics.RecordAnalysis(context.Background(), "MEDIUM", "success", time.Second)
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordTokens(ctx, "gemini", "gemini-2.5-flash", 10, 20)
	m.RecordAnalysis(ctx, "SPICY", "schema", time.Millisecond)
	m.RecordTransition(ctx, "submit", "analyzing")
}
