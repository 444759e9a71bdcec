// Package httputil provides retry helpers for registry clients.
//
// [Retry] re-runs a function with exponential backoff, but only for errors
// wrapped in [RetryableError]. Registry clients wrap transient failures
// (network errors, 5xx and 429 responses) and return everything else as-is,
// so a 404 or a malformed document fails fast:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    if httputil.RetryableStatus(resp.StatusCode) {
//	        return &httputil.RetryableError{Err: fmt.Errorf("status %d", resp.StatusCode)}
//	    }
//	    return decode(resp.Body)
//	})
//
// Retries are opt-in: minbump runs with a single attempt unless the
// configuration sets retries above zero.
package httputil
