package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"
)

// sampleResponse returns a valid Al Adhan API response for testing.
func sampleResponse() Response {
	return Response{
		Code:   200,
		Status: "OK",
		Data: Data{
			Timings: Timings{
				Fajr:    "05:17",
				Sunrise: "06:48",
				Dhuhr:   "12:13",
				Asr:     "15:02",
				Maghrib: "17:39",
				Isha:    "19:10",
			},
			Date: DateInfo{
				Hijri: HijriDate{
					Day:   "10",
					Month: HijriMonth{Number: 9, En: "Ramaḍān", Ar: "رَمَضان"},
					Year:  "1447",
				},
			},
			Meta: Meta{
				Latitude:  51.5074,
				Longitude: -0.1278,
				Timezone:  "Europe/London",
				Method:    MethodInfo{ID: 2, Name: "ISNA"},
				School:    "STANDARD",
			},
		},
	}
}

func TestNewClient(t *testing.T) {
	c := NewClient()
	if c == nil {
		t.Fatal("NewClient returned nil")
	}
	if c.BaseURL != defaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", c.BaseURL, defaultBaseURL)
	}
}

func TestFetchByCoordinates_Success(t *testing.T) {
	riyadh, err := time.LoadLocation("Asia/Riyadh")
	if err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/timings/05-03-2026" {
			t.Errorf("path = %s, want DD-MM-YYYY date", r.URL.Path)
		}
		if r.Header.Get("User-Agent") != userAgent {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		q := r.URL.Query()
		want := map[string]string{
			"latitude":       "24.713600",
			"longitude":      "46.675300",
			"method":         "4",
			"school":         "1",
			"timezonestring": "Asia/Riyadh",
		}
		for k, v := range want {
			if q.Get(k) != v {
				t.Errorf("%s = %q, want %q", k, q.Get(k), v)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sampleResponse())
	}))
	defer server.Close()

	c := NewClient()
	c.BaseURL = server.URL

	date := time.Date(2026, 3, 5, 0, 0, 0, 0, riyadh)
	got, err := c.FetchByCoordinates(context.Background(), date, 24.7136, 46.6753, 4, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Data.Timings.Fajr != "05:17" || got.Data.Meta.Method.Name != "ISNA" {
		t.Errorf("response = %+v", got.Data)
	}
}

func TestFetchByCoordinates_OptionalParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		for _, k := range []string{"method", "school", "timezonestring"} {
			if q.Has(k) {
				t.Errorf("%s should not be sent, got %q", k, q.Get(k))
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sampleResponse())
	}))
	defer server.Close()

	c := NewClient()
	c.BaseURL = server.URL

	date := time.Date(2026, 2, 28, 0, 0, 0, 0, time.FixedZone("AST", 3*60*60))
	if _, err := c.FetchByCoordinates(context.Background(), date, 51.5074, -0.1278, -1, -1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFetchByCoordinates_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "http status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, strings.Repeat("x", 2*maxErrorBody), http.StatusServiceUnavailable)
			},
			wantErr: "503",
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
			wantErr: "decode",
		},
		{
			name: "api error code",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(Response{Code: 400, Status: "Bad Request"})
			},
			wantErr: "code=400",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			c := NewClient()
			c.BaseURL = server.URL
			_, err := c.FetchByCoordinates(context.Background(), time.Now(), 51.5, -0.1, -1, -1)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should contain %q", err, tt.wantErr)
			}
			if len(err.Error()) > maxErrorBody+100 {
				t.Errorf("error message not bounded: %d bytes", len(err.Error()))
			}
		})
	}
}

func TestFetchByCoordinates_ConnectionRefused(t *testing.T) {
	c := NewClient()
	c.BaseURL = "http://127.0.0.1:1" // nothing listening

	if _, err := c.FetchByCoordinates(context.Background(), time.Now(), 51.5, -0.1, -1, -1); err == nil {
		t.Fatal("expected error for connection refused, got nil")
	}
}

func TestFetchByCoordinates_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(sampleResponse())
	}))
	defer server.Close()

	c := NewClient()
	c.BaseURL = server.URL

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.FetchByCoordinates(ctx, time.Now(), 0, 0, -1, -1); err == nil {
		t.Fatal("expected error for cancelled context, got nil")
	}
}
