package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var keysToIgnore = map[string]struct{}{
	"timestamp":  {},
	"request_id": {},
	"createdAt":  {},
}

func prepareRequest(method, path string, body io.Reader, headers map[string]string, cookies []*http.Cookie) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	for _, c := range cookies {
		req.AddCookie(c)
	}

	return req, nil
}

func compareResponse(t testing.TB, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	cleanMap(actual)

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indetermistic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		return k == "timestamp" || k == "request_id" || k == "createdAt"
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func cleanMap(m map[string]any) {
	for k := range m {
		if _, ok := keysToIgnore[k]; ok {
			delete(m, k)
			continue
		}
		if nested, ok := m[k].(map[string]any); ok {
			cleanMap(nested)
		}
	}
}

func uniqueEmail() string {
	return fmt.Sprintf("user-%s@example.com", uuid.NewString())
}

func insertTestCourse(t testing.TB, app *TestApp, title string, price decimal.Decimal) int {
	t.Helper()

	var courseId int
	err := app.DB.QueryRow(context.Background(),
		`INSERT INTO courses (title, summary, description, price, currency, duration, published)
		 VALUES ($1, $2, $3, $4, 'LKR', '6 weeks', true)
		 RETURNING id`,
		title, "summary for "+title, "description for "+title, price,
	).Scan(&courseId)
	require.NoError(t, err)

	return courseId
}

func activateUserByEmail(t testing.TB, app *TestApp, email string) {
	t.Helper()

	_, err := app.DB.Exec(context.Background(),
		`UPDATE users SET activated = true, version = version + 1 WHERE email = $1`, email)
	require.NoError(t, err)
}
