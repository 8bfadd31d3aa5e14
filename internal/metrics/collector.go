package metrics

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	mberrors "github.com/mediabench/mediabench/pkg/errors"
	"github.com/mediabench/mediabench/pkg/memmon"
	"github.com/mediabench/mediabench/pkg/types"
	"github.com/mediabench/mediabench/pkg/utils"
)

// timedCycles is the number of fetch cycles that contribute to the
// timing mean. One additional header-probing cycle precedes them and
// its elapsed time is discarded.
const timedCycles = 6

// Collector measures asset retrieval for one session. Assets within a
// case are measured strictly sequentially: overlapping requests would
// contend for bandwidth and bias the timings.
type Collector struct {
	provider types.Provider
	session  *Session
	instr    *Instrumentation
	client   *http.Client
	logger   *slog.Logger
}

// NewCollector creates a collector bound to one session. A nil client
// falls back to a default client with no timeout: an unresponsive
// backend blocks that asset's measurement rather than skewing it.
func NewCollector(provider types.Provider, session *Session, instr *Instrumentation, client *http.Client) *Collector {
	if client == nil {
		client = &http.Client{}
	}
	return &Collector{
		provider: provider,
		session:  session,
		instr:    instr,
		client:   client,
		logger:   slog.Default().With("component", "collector"),
	}
}

// CollectCase measures every asset of one case-view route. The manifest
// names the files belonging to the case directory; when it is empty the
// case's assets are discovered by a live listing. URLs already measured
// in this session are skipped. A canceled context abandons the
// remaining work without mutating session state.
func (c *Collector) CollectCase(ctx context.Context, route, caseDir string, manifest []string) error {
	refs := make([]types.AssetReference, 0, len(manifest))
	if len(manifest) == 0 {
		listed, err := c.provider.ListFiles(ctx, caseDir, "")
		if err != nil {
			return mberrors.Wrap(mberrors.ErrCodeListFailed, "collect", caseDir, err)
		}
		refs = listed
	} else {
		for _, name := range manifest {
			refs = append(refs, types.AssetReference{
				Path: utils.JoinKey(caseDir, name),
				Name: name,
			})
		}
	}

	for _, ref := range refs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		url, err := c.provider.DownloadURL(ctx, ref)
		if err != nil {
			return mberrors.Wrap(mberrors.ErrCodeURLFailed, "collect", ref.Path, err)
		}

		if !c.session.MarkSeen(url) {
			c.logger.Debug("url already measured, skipping", "url", url)
			continue
		}

		record, err := c.measure(ctx, route, url, ref.Name)
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.session.Append(record)

		c.logger.Info("asset measured",
			"route", route,
			"file", ref.Name,
			"fetch_ms", record.FetchTimeMs,
			"payload_kb", record.PayloadKB,
			"throughput_kbps", record.ThroughputKBps)
	}
	return nil
}

// measure runs the full fetch sequence for one URL: a header probe,
// six timed cycles, and a payload fetch with heap accounting.
func (c *Collector) measure(ctx context.Context, route, url, name string) (types.MetricRecord, error) {
	headerBytes := c.probeHeaders(ctx, url)

	var totalMs float64
	var succeeded int
	for cycle := 0; cycle < timedCycles; cycle++ {
		elapsed, err := c.timedFetch(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return types.MetricRecord{}, ctx.Err()
			}
			c.logger.Warn("fetch cycle failed", "url", url, "cycle", cycle+1, "error", err)
			if c.instr != nil {
				c.instr.recordCycle(c.session.Provider, 0, false)
			}
			continue
		}
		totalMs += float64(elapsed) / float64(time.Millisecond)
		succeeded++
		if c.instr != nil {
			c.instr.recordCycle(c.session.Provider, elapsed.Seconds(), true)
		}
	}

	var fetchTimeMs float64
	if succeeded > 0 {
		fetchTimeMs = totalMs / float64(succeeded)
	}

	payloadBytes, memDelta := c.fetchPayload(ctx, url)
	if ctx.Err() != nil {
		return types.MetricRecord{}, ctx.Err()
	}
	if c.instr != nil && payloadBytes > 0 {
		c.instr.recordPayload(c.session.Provider, payloadBytes)
	}

	payloadKB := float64(payloadBytes) / 1024
	var throughput float64
	if fetchTimeMs > 0 {
		throughput = payloadKB * 1000 / fetchTimeMs
	}

	return types.MetricRecord{
		Route:            route,
		Provider:         c.session.Provider,
		Country:          c.session.Location.Country,
		Continent:        c.session.Location.Continent,
		FileURL:          url,
		FileName:         name,
		FileType:         utils.FileTypeOf(name),
		SizeLabel:        utils.SizeLabelOf(name),
		FileSizeHuman:    humanize.Bytes(uint64(payloadBytes)),
		FetchTimeMs:      round2(fetchTimeMs),
		ThroughputKBps:   round2(throughput),
		PayloadKB:        round2(payloadKB),
		HeaderSizeBytes:  headerBytes,
		MemoryDeltaHuman: humanize.Bytes(memDelta),
	}, nil
}

// probeHeaders issues the header-overhead cycle: the response headers
// are serialized as "key: value" lines joined by CRLF and the encoded
// byte length is returned. Elapsed time is discarded. A failed probe
// yields zero overhead.
func (c *Collector) probeHeaders(ctx context.Context, url string) int64 {
	resp, err := c.doFetch(ctx, url)
	if err != nil {
		c.logger.Warn("header probe failed", "url", url, "error", err)
		return 0
	}
	defer drain(resp)

	lines := make([]string, 0, len(resp.Header))
	for key, values := range resp.Header {
		for _, v := range values {
			lines = append(lines, key+": "+v)
		}
	}
	return int64(len(strings.Join(lines, "\r\n")))
}

// timedFetch measures the wall-clock time until response headers
// arrive. The body is drained afterwards, outside the timed window, so
// the connection can be reused.
func (c *Collector) timedFetch(ctx context.Context, url string) (time.Duration, error) {
	start := time.Now()
	resp, err := c.doFetch(ctx, url)
	elapsed := time.Since(start)
	if err != nil {
		return 0, err
	}
	drain(resp)
	return elapsed, nil
}

// fetchPayload consumes the full body once to size the payload, with a
// GC hint and heap snapshots around the fetch.
func (c *Collector) fetchPayload(ctx context.Context, url string) (int64, uint64) {
	before := memmon.SnapshotAfterGC()

	resp, err := c.doFetch(ctx, url)
	if err != nil {
		c.logger.Warn("payload fetch failed", "url", url, "error", err)
		return 0, 0
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	after := memmon.Snapshot()
	if err != nil {
		c.logger.Warn("payload read failed", "url", url, "error", err)
		return 0, 0
	}

	return int64(len(body)), memmon.HeapDelta(before, after)
}

func (c *Collector) doFetch(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		drain(resp)
		return nil, &statusError{code: resp.StatusCode, url: url}
	}
	return resp, nil
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

type statusError struct {
	code int
	url  string
}

func (e *statusError) Error() string {
	return "unexpected status " + http.StatusText(e.code) + " fetching " + e.url
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
