// Package resolver normalizes Bluesky post references into the one
// canonical getPosts URL the verification pipeline fetches.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	getPostsPath      = "/xrpc/app.bsky.feed.getPosts"
	resolveHandlePath = "/xrpc/com.atproto.identity.resolveHandle"

	postCollection = "app.bsky.feed.post"
)

var (
	// ErrInvalidIdentifierFormat means the reference matched none of the
	// accepted shapes. No network call is made in that case.
	ErrInvalidIdentifierFormat = errors.New("resolver: invalid post identifier format")

	// ErrResolutionFailed wraps handle lookup network or decode failures.
	ErrResolutionFailed = errors.New("resolver: handle resolution failed")
)

type Resolver struct {
	httpClient *http.Client
	apiBase    string
}

// New builds a resolver talking to the given Bluesky public API base URL.
// A nil client falls back to http.DefaultClient.
func New(httpClient *http.Client, apiBase string) *Resolver {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Resolver{
		httpClient: httpClient,
		apiBase:    strings.TrimRight(apiBase, "/"),
	}
}

// Resolve accepts a post reference in one of three shapes and returns the
// canonical getPosts URL:
//
//   - a canonical getPosts URL, returned unchanged
//   - an at:// URI, rewritten into the canonical URL without any lookup
//   - a bsky.app profile link, whose handle is resolved to a DID first
//
// Only the profile-link form touches the network, and exactly once.
func (r *Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	if strings.HasPrefix(ref, r.apiBase+getPostsPath) {
		return ref, nil
	}

	if strings.HasPrefix(ref, "at://") {
		return r.canonicalURL(ref), nil
	}

	// https://bsky.app/profile/<handle>/post/<rkey>[/...]
	parts := strings.Split(ref, "/")
	if len(parts) >= 7 && parts[0] == "https:" && parts[1] == "" &&
		parts[3] == "profile" && parts[5] == "post" {
		handle, rkey := parts[4], parts[6]
		// Shared links often carry a query or fragment after the record
		// key; neither belongs in the at-URI.
		rkey, _, _ = strings.Cut(rkey, "?")
		rkey, _, _ = strings.Cut(rkey, "#")
		if handle == "" || rkey == "" {
			return "", fmt.Errorf("%w: %q", ErrInvalidIdentifierFormat, ref)
		}

		did := handle
		if !strings.HasPrefix(handle, "did:") {
			resolved, err := r.ResolveHandle(ctx, handle)
			if err != nil {
				return "", err
			}
			did = resolved
		}

		return r.Resolve(ctx, fmt.Sprintf("at://%s/%s/%s", did, postCollection, rkey))
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidIdentifierFormat, ref)
}

// canonicalURL substitutes an at:// URI into the getPosts query template.
// The URI is inserted verbatim; the prover fetches the exact same string.
func (r *Resolver) canonicalURL(atURI string) string {
	return r.apiBase + getPostsPath + "?uris=" + atURI
}

// ResolveHandle looks a handle up through the identity resolution
// endpoint and returns its DID.
func (r *Resolver) ResolveHandle(ctx context.Context, handle string) (string, error) {
	lookupURL := r.apiBase + resolveHandlePath + "?handle=" + url.QueryEscape(handle)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: resolving %q returned HTTP %d", ErrResolutionFailed, handle, resp.StatusCode)
	}

	var decoded struct {
		DID string `json:"did"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}
	if decoded.DID == "" {
		return "", fmt.Errorf("%w: empty did for handle %q", ErrResolutionFailed, handle)
	}

	return decoded.DID, nil
}

// ProbeSize fetches the canonical URL once and returns the byte length of
// the body. The prover fetches the resource again later; the two sizes
// match only if the post is unchanged in between, a gap this client does
// not close.
func (r *Resolver) ProbeSize(ctx context.Context, canonicalURL string) (uint64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, canonicalURL, nil)
	if err != nil {
		return 0, fmt.Errorf("probing %s: %w", canonicalURL, err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("probing %s: %w", canonicalURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("probing %s: HTTP %d", canonicalURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("probing %s: %w", canonicalURL, err)
	}

	return uint64(len(body)), nil
}
