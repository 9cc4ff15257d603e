package config

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"jobboard-engine/internal/runlock"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

func (v Validation) Error() string {
	return "config validation failed:\n- " + strings.Join(v.Errors, "\n- ")
}

// NormalizeAndValidate returns a copy with defaults filled in, plus any
// problems found. Callers refuse to start when the result is not OK.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	if out.App.Host == "" {
		out.App.Host = "127.0.0.1"
	}
	if out.App.Port == 0 {
		out.App.Port = 38471
	}
	if out.App.DataDir == "" {
		out.App.DataDir = "."
	}
	if out.App.Port < 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	// ---- polling ----
	if out.Polling.IntervalMinutes == 0 {
		out.Polling.IntervalMinutes = 60
	}
	if out.Polling.FetchTimeoutSeconds == 0 {
		out.Polling.FetchTimeoutSeconds = 30
	}
	if out.Polling.ProcessTimeoutSeconds == 0 {
		out.Polling.ProcessTimeoutSeconds = 120
	}
	if out.Polling.IntervalMinutes < 0 {
		res.addErr("polling.interval_minutes must be > 0")
	} else if out.Polling.IntervalMinutes < 5 {
		res.addWarn("polling.interval_minutes is very low (%d) and may hit provider rate limits.", out.Polling.IntervalMinutes)
	}
	if out.Polling.FetchTimeoutSeconds < 0 {
		res.addErr("polling.fetch_timeout_seconds must be > 0")
	}
	if out.Polling.ProcessTimeoutSeconds < 0 {
		res.addErr("polling.process_timeout_seconds must be > 0")
	}

	// ---- placeholders ----
	for name, v := range map[string]string{
		"placeholders.company_id": out.Placeholders.CompanyID,
		"placeholders.created_by": out.Placeholders.CreatedBy,
	} {
		if s := strings.TrimSpace(v); s != "" {
			if _, err := uuid.Parse(s); err != nil {
				res.addErr("%s must be a UUID: %v", name, err)
			}
		}
	}

	// ---- store ----
	out.Store.Driver = strings.ToLower(strings.TrimSpace(out.Store.Driver))
	switch out.Store.Driver {
	case "":
		out.Store.Driver = "sqlite"
		fallthrough
	case "sqlite":
		if out.Store.Path == "" {
			out.Store.Path = "jobboard.db"
		}
	case "postgres":
		if strings.TrimSpace(out.Store.DSN) == "" {
			res.addErr("store.dsn is required when store.driver=postgres")
		}
	default:
		res.addErr("store.driver must be sqlite or postgres, got %q", out.Store.Driver)
	}

	// ---- lock ----
	out.Lock.Kind = strings.ToLower(strings.TrimSpace(out.Lock.Kind))
	switch out.Lock.Kind {
	case "":
		out.Lock.Kind = "none"
	case "none":
	case "file":
		if out.Lock.Path == "" {
			out.Lock.Path = "ingest.lock"
		}
	case "redis":
		if out.Lock.RedisAddr == "" {
			res.addErr("lock.redis_addr is required when lock.kind=redis")
		}
	default:
		res.addErr("lock.kind must be none, file or redis, got %q", out.Lock.Kind)
	}
	if out.Lock.TTLSeconds < 0 {
		res.addErr("lock.ttl_seconds must be >= 0")
	}

	// ---- rate limit ----
	if out.RateLimit.RequestsPerSecond <= 0 {
		out.RateLimit.RequestsPerSecond = 1
	}
	if out.RateLimit.Burst <= 0 {
		out.RateLimit.Burst = 2
	}

	// ---- sources ----
	boards := []struct {
		name string
		b    *Board
	}{{"lever", &out.Sources.Lever}, {"greenhouse", &out.Sources.Greenhouse}}
	for _, bd := range boards {
		bd.b.Companies = trimCompanies(bd.b.Companies)
		if bd.b.Enabled && len(bd.b.Companies) == 0 {
			res.addWarn("sources.%s is enabled but has no companies; it will fetch nothing.", bd.name)
		}
	}

	a := &out.Sources.Alerts
	if a.Enabled {
		if strings.TrimSpace(a.IMAPHost) == "" {
			res.addErr("sources.alerts.imap_host is required when sources.alerts.enabled=true")
		}
		if a.IMAPPort == 0 {
			a.IMAPPort = 993
		}
		if strings.TrimSpace(a.Username) == "" {
			res.addWarn("sources.alerts.username is empty; the alerts source will be skipped.")
		}
	}

	enabled := 0
	for _, on := range []bool{out.Sources.Adzuna.Enabled, out.Sources.Jooble.Enabled,
		out.Sources.Lever.Enabled, out.Sources.Greenhouse.Enabled, a.Enabled} {
		if on {
			enabled++
		}
	}
	if enabled == 0 {
		res.addWarn("no sources enabled; runs will fetch nothing.")
	}

	// The redis lock is not renewed, so it must outlive the longest run.
	if out.Lock.Kind == "redis" && enabled > 0 {
		ttl := out.Lock.TTLSeconds
		if ttl == 0 {
			ttl = int(runlock.DefaultTTL.Seconds())
		}
		if worst := worstCaseRunSeconds(out.Polling, enabled); ttl <= worst {
			res.addWarn("lock.ttl_seconds (%d) does not exceed the longest possible run (%ds); another instance may start an overlapping run.", ttl, worst)
		}
	}

	return out, res
}

// worstCaseRunSeconds bounds one run: every source uses its full fetch and
// process deadlines, one after another unless sources run concurrently.
func worstCaseRunSeconds(p Polling, sources int) int {
	perSource := p.FetchTimeoutSeconds + p.ProcessTimeoutSeconds
	if p.Concurrent {
		return perSource
	}
	return perSource * sources
}

func trimCompanies(cs []BoardCompany) []BoardCompany {
	seen := map[string]bool{}
	var out []BoardCompany
	for _, c := range cs {
		c.Slug = strings.TrimSpace(c.Slug)
		c.Name = strings.TrimSpace(c.Name)
		if c.Slug == "" {
			continue
		}
		key := strings.ToLower(c.Slug)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
