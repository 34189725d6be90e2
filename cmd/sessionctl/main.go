// sessionctl is a small operator CLI against a running sessiond instance.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL    string
	CookieName string
	SessionID  string
	OutFormat  string // "json" | "text"
	HTTP       *http.Client
}

func (c *client) do(method, path string) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return 0, nil, err
	}
	if c.SessionID != "" {
		req.AddCookie(&http.Cookie{Name: c.CookieName, Value: c.SessionID})
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func main() {
	c := &client{
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
			// Sign-out answers with a redirect; the body is not interesting.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}

	root := &cobra.Command{
		Use:   "sessionctl",
		Short: "Operator CLI for sessiond",
	}
	root.PersistentFlags().StringVar(&c.BaseURL, "url", envOr("SESSIOND_URL", "http://localhost:8000"), "sessiond base URL")
	root.PersistentFlags().StringVar(&c.CookieName, "cookie", "sid", "session cookie name")
	root.PersistentFlags().StringVar(&c.SessionID, "session", os.Getenv("SESSIOND_SESSION"), "session id to act as")
	root.PersistentFlags().StringVar(&c.OutFormat, "out", "json", "output format: json|text")

	root.AddCommand(&cobra.Command{
		Use:   "health",
		Short: "Check service readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := c.do(http.MethodGet, "/healthz")
			if err != nil {
				return err
			}
			c.print(status, body)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "whoami",
		Short: "Show the user bound to the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := c.do(http.MethodGet, "/me")
			if err != nil {
				return err
			}
			c.print(status, body)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "signout [provider]",
		Short: "Remove the session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := "github"
			if len(args) == 1 {
				provider = args[0]
			}
			status, body, err := c.do(http.MethodGet, "/oauth/"+provider+"/signout")
			if err != nil {
				return err
			}
			c.print(status, body)
			return nil
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
