package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog/log"
)

type board struct {
	name   string // "{title}({id})"
	header []string
	rows   [][]string
}

func exportUrl(baseUrl string, compID int64, lbID int64, title string) string {
	u := fmt.Sprintf("%s/competitions/%d/results.zip", strings.TrimSuffix(baseUrl, "/"), compID)
	q := url.Values{}
	if lbID != 0 {
		q.Set("id", fmt.Sprint(lbID))
	} else if title != "" {
		q.Set("title", title)
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func fetchArchive(u string) ([]byte, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	log.Debug().Str("url", u).Msg("fetching results")
	resp, err := client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch results: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("results request failed with %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// readBoards keeps the archive's entry order.
func readBoards(archive []byte) ([]board, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	boards := make([]board, 0, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
		}
		records, err := csv.NewReader(rc).ReadAll()
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", f.Name, err)
		}

		b := board{name: strings.TrimSuffix(f.Name, ".csv")}
		if len(records) > 0 {
			b.header = records[0]
			b.rows = records[1:]
		}
		boards = append(boards, b)
	}
	return boards, nil
}
