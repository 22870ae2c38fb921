package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const (
	_maxInputSize = 64 * 1024 * 1024
	_filePerm     = 0644
)

func newFetchCmd(app *_App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <url> [file]",
		Short: "Download a puzzle input",
		Long: `Downloads a puzzle input and saves it (default input.txt).

Cookies are read from a file in Netscape cookies.txt format (default
./Cookies, skipped when missing). A bare session token may be given with
--session or ALMANAC_FETCH_SESSION instead.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := _defaultInputFile
			if len(args) > 1 {
				name = args[1]
			}

			f, err := app.newFetcher()
			if err != nil {
				return err
			}
			n, err := f.download(cmd.Context(), args[0], name)
			if err != nil {
				return err
			}
			fprintln(cmd.OutOrStdout(), "saved", n, "bytes to", name)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("cookies", _defaultCookiesFile, "cookies.txt file")
	flags.String("session", "", "session cookie value")
	flags.String("user-agent", "", "User-Agent header")
	flags.String("referer", "", "Referer header")
	flags.Duration("interval", _defaultFetchInterval, "minimum time between requests")
	flags.Duration("timeout", _defaultFetchTimeout, "timeout of a single request")
	flags.Uint64("retries", _defaultRetries, "retries on transient errors")
	for _, key := range []string{"cookies", "session", "user-agent", "referer", "interval", "timeout", "retries"} {
		_ = app.viper.BindPFlag("fetch."+key, flags.Lookup(key))
	}
	return cmd
}

type _Fetcher struct {
	client     *http.Client
	session    string
	userAgent  string
	referer    string
	limiter    *rate.Limiter
	retries    uint64
	newBackOff func() backoff.BackOff
	logger     *zap.Logger
}

func (app *_App) newFetcher() (*_Fetcher, error) {
	c := app.config.Fetch

	client := &http.Client{Timeout: c.Timeout}
	if c.Cookies != "" {
		jar, err := _loadCookies(c.Cookies)
		switch {
		case err == nil:
			client.Jar = jar
		case os.IsNotExist(err):
		default:
			return nil, err
		}
	}

	limit := rate.Inf
	if c.Interval > 0 {
		limit = rate.Every(c.Interval)
	}

	return &_Fetcher{
		client:     client,
		session:    c.Session,
		userAgent:  c.UserAgent,
		referer:    c.Referer,
		limiter:    rate.NewLimiter(limit, 1),
		retries:    c.Retries,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		logger:     app.logger,
	}, nil
}

// fetch returns the body of a successful GET of rawurl. Network errors,
// 429 and 5xx responses are retried; other failures are not.
func (f *_Fetcher) fetch(ctx context.Context, rawurl string) ([]byte, error) {
	if _, err := url.Parse(rawurl); err != nil {
		return nil, err
	}

	var body []byte
	op := func() error {
		if err := f.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		if f.session != "" {
			req.AddCookie(&http.Cookie{Name: "session", Value: f.session})
		}
		if f.userAgent != "" {
			req.Header.Set("User-Agent", f.userAgent)
		}
		if f.referer != "" {
			req.Header.Set("Referer", f.referer)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
			return errors.New(resp.Status)
		default:
			return backoff.Permanent(errors.New(resp.Status))
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, _maxInputSize+1))
		if err != nil {
			return err
		}
		if len(body) > _maxInputSize {
			return backoff.Permanent(fmt.Errorf("response larger than %v bytes", _maxInputSize))
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		f.logger.Warn("fetch failed, retrying",
			zap.String("url", rawurl),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	b := backoff.WithContext(backoff.WithMaxRetries(f.newBackOff(), f.retries), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return nil, fmt.Errorf("fetching %v: %w", rawurl, err)
	}
	return body, nil
}

// download fetches rawurl into the named file, replacing it only once
// the whole body has arrived.
func (f *_Fetcher) download(ctx context.Context, rawurl, name string) (int, error) {
	body, err := f.fetch(ctx, rawurl)
	if err != nil {
		return 0, err
	}
	f.logger.Debug("fetched", zap.String("url", rawurl), zap.Int("bytes", len(body)))
	if err := _writeFileAtomic(name, body); err != nil {
		return 0, err
	}
	return len(body), nil
}

func _writeFileAtomic(name string, data []byte) (err error) {
	file, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*")
	if err != nil {
		return
	}
	defer func() {
		if err != nil {
			os.Remove(file.Name())
		}
	}()

	_, werr := file.Write(data)
	serr := file.Sync()
	cerr := file.Close()
	switch {
	case werr != nil:
		return werr
	case serr != nil:
		return serr
	case cerr != nil:
		return cerr
	}
	if err = os.Chmod(file.Name(), _filePerm); err != nil {
		return
	}
	return os.Rename(file.Name(), name)
}

// _loadCookies reads a cookies.txt file. Malformed lines are skipped.
func _loadCookies(name string) (jar http.CookieJar, err error) {
	file, err := os.Open(name)
	if err != nil {
		return
	}
	defer file.Close()

	jar, err = cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
	})
	if err != nil {
		return nil, err
	}

	s := bufio.NewScanner(file)
	for s.Scan() {
		line := s.Text()

		// curl marks HttpOnly cookies with this prefix.
		line = strings.TrimPrefix(line, "#HttpOnly_")
		if line == "" || line[0] == '#' {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			continue
		}

		expires, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			continue
		}

		cookie := http.Cookie{
			Name:   fields[5],
			Value:  fields[6],
			Path:   fields[2],
			Domain: fields[0],
			Secure: fields[3] == "TRUE",
		}
		if expires > 0 {
			cookie.Expires = time.Unix(expires, 0)
		}

		scheme := "http"
		host := cookie.Domain
		if cookie.Secure {
			scheme = "https"
		}
		if host != "" && host[0] == '.' {
			host = host[1:]
		}

		u, err := url.Parse(scheme + "://" + host + "/")
		if err != nil {
			continue
		}
		jar.SetCookies(u, []*http.Cookie{&cookie})
	}
	return jar, s.Err()
}
