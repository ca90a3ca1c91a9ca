// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package resultserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"repsub/pkg/subset"
)

func TestHandleResultReportsRunningBeforeCompletion(t *testing.T) {
	s := NewServer()
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/result", nil))

	var st status
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if st.State != "running" {
		t.Fatalf("state = %q, want running", st.State)
	}
}

func TestHandleResultReportsDoneAfterSetResult(t *testing.T) {
	s := NewServer()
	s.SetResult(&Result{K: 5, Algorithm: "Fast", Subset: subset.Snapshot{Rows: []int{1, 2}, TotalCoverage: 3.5}})

	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/result", nil))

	var st status
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if st.State != "done" || st.Result == nil || st.Result.K != 5 {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestHandleResultReportsErrorState(t *testing.T) {
	s := NewServer()
	s.SetError(errTest{"boom"})

	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/result", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status code = %d, want 500", rec.Code)
	}
}

type errTest struct{ msg string }

func (e errTest) Error() string { return e.msg }
