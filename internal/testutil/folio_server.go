package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ndewijer/mf-folio-backend/internal/model"
)

// FolioServer is a fake upstream folio API serving getFolioData.php and
// getuserdetails.php from memory.
type FolioServer struct {
	*httptest.Server

	Holdings map[string][]model.HoldingRecord
	Profiles map[string]map[string]any
	// Status, when non-zero, is returned for every request instead of a payload
	Status int

	requests atomic.Int64
}

// NewFolioServer starts a fake upstream. It is closed when the test completes.
//
// Example usage:
//
//	srv := testutil.NewFolioServer(t)
//	srv.Holdings["42"] = testutil.CreateHoldings(3)
//	client := folio.NewClient(folio.Config{BaseURL: srv.URL})
func NewFolioServer(t *testing.T) *FolioServer {
	t.Helper()

	fs := &FolioServer{
		Holdings: map[string][]model.HoldingRecord{},
		Profiles: map[string]map[string]any{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /Portfolio/getFolioData.php", fs.folioData)
	mux.HandleFunc("POST /userDetails/getuserdetails.php", fs.userDetails)

	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.requests.Add(1)
		if fs.Status != 0 {
			w.WriteHeader(fs.Status)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(fs.Close)

	return fs
}

// Requests returns how many requests the server has received.
func (fs *FolioServer) Requests() int {
	return int(fs.requests.Load())
}

func (fs *FolioServer) folioData(w http.ResponseWriter, r *http.Request) {
	userID, ok := decodeUserID(w, r)
	if !ok {
		return
	}

	records, found := fs.Holdings[userID]
	if !found {
		writeJSON(w, map[string]any{"Success": false, "Message": "No folio found for this user"})
		return
	}

	rows := make([]map[string]string, len(records))
	for i, rec := range records {
		rows[i] = map[string]string{
			"fund_name":       rec.FundName,
			"scheme_code":     rec.SchemeCode,
			"folio_no":        rec.FolioNumber,
			"purchase_amount": rec.PurchaseAmount,
			"current_value":   rec.CurrentValue,
			"bought_date":     rec.PurchaseDate,
			"units_allocated": rec.UnitsAllocated,
		}
	}
	writeJSON(w, map[string]any{"Success": true, "statusData": rows})
}

func (fs *FolioServer) userDetails(w http.ResponseWriter, r *http.Request) {
	userID, ok := decodeUserID(w, r)
	if !ok {
		return
	}

	profile, found := fs.Profiles[userID]
	if !found {
		writeJSON(w, map[string]any{"Success": false, "Message": "User not found"})
		return
	}
	writeJSON(w, map[string]any{"Success": true, "userData": profile})
}

func decodeUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return "", false
	}
	return body.UserID, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	//nolint:errcheck // test server
	json.NewEncoder(w).Encode(v)
}
