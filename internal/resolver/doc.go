// Package resolver verifies remote links over HTTP.
//
// A link is probed with HEAD first. 200 means alive. 429 is retried after a
// fixed back-off while the retry policy allows it, and is dead once it does
// not. Any other status falls back to a GET whose status alone decides the
// verdict. Transport failures (timeouts, DNS, resets) on either request yield
// the error verdict and are never retried.
package resolver
