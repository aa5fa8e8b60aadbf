package ws

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// originPolicy decides which browser origins may open a websocket.
// An empty policy accepts every origin.
type originPolicy struct {
	allowAll bool
	allowed  map[string]struct{}
}

func newOriginPolicy(origins []string, log *slog.Logger) originPolicy {
	policy := originPolicy{allowed: make(map[string]struct{}, len(origins))}
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		switch trimmed {
		case "":
			continue
		case "*":
			policy.allowAll = true
			continue
		}
		normalized, ok := normalizeOrigin(trimmed)
		if !ok {
			log.Warn("Ignoring invalid origin in configuration", "origin", origin)
			continue
		}
		policy.allowed[normalized] = struct{}{}
	}
	if len(policy.allowed) == 0 {
		policy.allowAll = true
	}
	return policy
}

func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}

// check is used as the upgrader CheckOrigin. Non browser clients send no
// Origin header and are accepted, the bearer token authenticates them.
func (p originPolicy) check(r *http.Request) bool {
	header := r.Header.Get("Origin")
	if header == "" || p.allowAll {
		return true
	}
	normalized, ok := normalizeOrigin(header)
	if !ok {
		return false
	}
	_, exists := p.allowed[normalized]
	return exists
}
