// Package resilience retries failing pipeline callbacks.
//
// Retries happen inside the pull that hit the failure, so a retried
// element still arrives in order and nothing runs in the background:
//
//	policy := resilience.DefaultRetryPolicy()
//	p, err := resilience.MapRetry(ids, policy, lookup)
//	if err != nil {
//	    return err // invalid policy
//	}
package resilience
