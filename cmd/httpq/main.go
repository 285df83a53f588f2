// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command httpq issues one HTTP query and writes the response body to
// standard output.
//
//	httpq [--method M] [--header K:V]... [--data k=v]... [--user U --password P]
//	      [--timeout D] [--cache POLICY] [--rate N] [--include] [--debug] URL
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gogama/httpq"
	"github.com/gogama/httpq/request"
	"github.com/gogama/httpq/transport"
)

func main() {
	if err := run(os.Args, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "httpq:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	app := cli.App{
		Name:      "httpq",
		Usage:     "issue one asynchronous HTTP query",
		ArgsUsage: "URL",
		Writer:    stdout,
		ErrWriter: os.Stderr,

		DisableSliceFlagSeparator: true,
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "method",
			Aliases: []string{"X"},
			Usage:   "HTTP method: GET, POST, PUT, DELETE, HEAD or PATCH",
			Value:   "GET",
		},
		&cli.StringSliceFlag{
			Name:    "header",
			Aliases: []string{"H"},
			Usage:   "custom request header as `NAME:VALUE` (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:    "data",
			Aliases: []string{"d"},
			Usage:   "form field as `KEY=VALUE`, sent in the query for GET and the body otherwise (repeatable)",
		},
		&cli.StringFlag{
			Name:    "user",
			Usage:   "username offered on an authentication challenge",
			EnvVars: []string{"HTTPQ_USER"},
		},
		&cli.StringFlag{
			Name:    "password",
			Usage:   "password offered on an authentication challenge",
			EnvVars: []string{"HTTPQ_PASSWORD"},
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "request timeout",
			Value: request.DefaultTimeout,
		},
		&cli.StringFlag{
			Name:  "cache",
			Usage: "cache policy: ProtocolDefault, ReloadIgnoringLocal, ReturnElseLoad or ReturnDontLoad",
			Value: request.CacheProtocolDefault.String(),
		},
		&cli.Float64Flag{
			Name:  "rate",
			Usage: "maximum round trips per second, 0 for unlimited",
		},
		&cli.IntFlag{
			Name:  "max-redirects",
			Usage: "maximum length of a redirect chain",
			Value: transport.DefaultMaxRedirects,
		},
		&cli.BoolFlag{
			Name:    "include",
			Aliases: []string{"i"},
			Usage:   "write the status line and response headers before the body",
		},
		&cli.BoolFlag{
			Name:    "debug",
			Usage:   "log every lifecycle event to standard error",
			EnvVars: []string{"HTTPQ_DEBUG"},
		},
	}

	app.Action = query
	return app.Run(args)
}

func query(cctx *cli.Context) error {
	if cctx.NArg() != 1 {
		return errors.New("exactly one URL is required")
	}

	logger := zap.NewNop()
	if cctx.Bool("debug") {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
		defer func() {
			_ = logger.Sync()
		}()
	}

	opts, err := buildOptions(cctx)
	if err != nil {
		return err
	}

	t := &transport.HTTP{
		Logger:       logger.Named("transport"),
		MaxRedirects: cctx.Int("max-redirects"),
	}
	if r := cctx.Float64("rate"); r > 0 {
		t.Limiter = rate.NewLimiter(rate.Limit(r), 1)
	}
	cl := &httpq.Client{
		Transport: t,
		Settings:  &httpq.Settings{Debug: cctx.Bool("debug"), Logger: logger},
	}

	method := request.Method(strings.ToUpper(cctx.String("method")))
	q, err := cl.Request(method, cctx.Args().First(), opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	resp, err := q.Wait(ctx)
	if err != nil {
		return err
	}
	return writeResponse(cctx.App.Writer, resp, cctx.Bool("include"))
}

func buildOptions(cctx *cli.Context) (*httpq.Options, error) {
	cache, err := request.ParseCachePolicy(cctx.String("cache"))
	if err != nil {
		return nil, err
	}

	opts := &httpq.Options{
		Options: request.Options{
			Credentials: request.Credentials{
				Username: cctx.String("user"),
				Password: cctx.String("password"),
			},
			Timeout:     cctx.Duration("timeout"),
			CachePolicy: cache,
		},
	}

	if headers := cctx.StringSlice("header"); len(headers) > 0 {
		opts.Header = make(map[string]string, len(headers))
		for _, h := range headers {
			k, v, ok := strings.Cut(h, ":")
			if !ok {
				return nil, fmt.Errorf("bad header %q: want NAME:VALUE", h)
			}
			opts.Header[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}

	if data := cctx.StringSlice("data"); len(data) > 0 {
		var form request.Values
		for _, d := range data {
			k, v, ok := strings.Cut(d, "=")
			if !ok {
				return nil, fmt.Errorf("bad data %q: want KEY=VALUE", d)
			}
			form = form.Add(k, v)
		}
		opts.Payload = form
	}

	return opts, nil
}

func writeResponse(w io.Writer, resp *httpq.Response, include bool) error {
	if resp.Err != nil {
		return fmt.Errorf("%w (%s)", resp.Err, resp.Failure())
	}

	if include {
		fmt.Fprintf(w, "%d %s\n", resp.StatusCode, resp.URL)
		if err := resp.Header.Write(w); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	if _, err := w.Write(resp.Body); err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
