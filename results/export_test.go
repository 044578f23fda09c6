package results_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
	"github.com/programme-lv/competitions/comp"
	"github.com/programme-lv/competitions/leaderboard"
	"github.com/programme-lv/competitions/memrepo"
	"github.com/programme-lv/competitions/results"
	"github.com/programme-lv/competitions/srvcerror"
	"github.com/programme-lv/competitions/subm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = subm.Participant{UUID: uuid.New(), Username: "alice"}
	bob   = subm.Participant{UUID: uuid.New(), Username: "bob"}
)

func seed(t *testing.T) *memrepo.Repo {
	t.Helper()
	repo := memrepo.New()
	repo.AddCompetition(comp.Competition{ID: 1, Title: "Olympiad 2024"})
	repo.AddCompetition(comp.Competition{ID: 2, Title: "Empty"})
	repo.AddPhase(comp.Phase{ID: 1, CompetitionID: 1})

	repo.AddLeaderboard(leaderboard.Leaderboard{
		ID: 10, CompetitionID: 1, Title: "Main",
		Columns: []leaderboard.Column{
			{ID: 3, LeaderboardID: 10, Title: "time", Index: 2},
			{ID: 2, LeaderboardID: 10, Title: "secret", Index: 1, Hidden: true},
			{ID: 1, LeaderboardID: 10, Title: "points", Index: 0},
		},
	})
	repo.AddLeaderboard(leaderboard.Leaderboard{
		ID: 11, CompetitionID: 1, Title: "Main (juniors)",
		Columns: []leaderboard.Column{{ID: 4, LeaderboardID: 11, Title: "points", Index: 0}},
	})
	repo.AddLeaderboard(leaderboard.Leaderboard{
		ID: 12, CompetitionID: 1, Title: "Bonus",
		Columns: []leaderboard.Column{{ID: 5, LeaderboardID: 12, Title: "extra", Index: 0}},
	})

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	finished := func(p subm.Participant, at time.Duration, lbID int64, scores map[int64]float64) {
		s := subm.New(p, 1, uuid.New())
		s.Status = subm.StatusFinished
		s.CreatedAt = base.Add(at)
		require.NoError(t, repo.StoreSubm(context.Background(), s))
		for col, v := range scores {
			repo.AddScore(subm.Score{SubmUUID: s.UUID, ColumnID: col, Value: v}, lbID)
		}
	}
	finished(alice, 0, 10, map[int64]float64{1: 87, 2: 1, 3: 1.5})
	finished(bob, time.Minute, 10, map[int64]float64{1: 60})
	finished(bob, 2*time.Minute, 11, map[int64]float64{4: 70})
	finished(alice, 3*time.Minute, 12, map[int64]float64{5: 5})
	return repo
}

func export(t *testing.T, repo *memrepo.Repo, compID int64, f results.Format, sel results.Selector) (results.Export, error) {
	t.Helper()
	e := results.NewExporter(repo, repo)
	return e.ExportHandler().Handle(context.Background(), results.ExportQuery{
		CompetitionID: compID,
		Format:        f,
		Selector:      sel,
	})
}

func jsonKeys(t *testing.T, body []byte) []string {
	t.Helper()
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &doc))
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	return keys
}

func TestExportByID(t *testing.T) {
	repo := seed(t)

	exp, err := export(t, repo, 1, results.FormatJSON, results.ByID(10))
	require.NoError(t, err)
	assert.Equal(t, "application/json", exp.ContentType)
	assert.Equal(t, []string{"Main(10)"}, jsonKeys(t, exp.Body))

	_, err = export(t, repo, 1, results.FormatJSON, results.ByID(999))
	assert.True(t, srvcerror.IsCode(err, srvcerror.ErrCodeNotFound))
}

func TestExportByTitle(t *testing.T) {
	repo := seed(t)

	exp, err := export(t, repo, 1, results.FormatJSON, results.ByTitle("Main"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Main(10)", "Main (juniors)(11)"}, jsonKeys(t, exp.Body))

	exp, err = export(t, repo, 1, results.FormatJSON, results.ByTitle("juniors"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Main (juniors)(11)"}, jsonKeys(t, exp.Body))

	// a full display key picks exactly one leaderboard
	exp, err = export(t, repo, 1, results.FormatJSON, results.ByTitle("Main(10)"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Main(10)"}, jsonKeys(t, exp.Body))

	// matching is case sensitive
	_, err = export(t, repo, 1, results.FormatJSON, results.ByTitle("main"))
	assert.True(t, srvcerror.IsCode(err, srvcerror.ErrCodeNotFound))
}

func TestExportAllNeverFailsOnEmptiness(t *testing.T) {
	repo := seed(t)

	exp, err := export(t, repo, 2, results.FormatJSON, results.All())
	require.NoError(t, err)
	assert.Equal(t, "{}", string(exp.Body))

	exp, err = export(t, repo, 2, results.FormatZIP, results.All())
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(exp.Body), int64(len(exp.Body)))
	require.NoError(t, err)
	assert.Empty(t, zr.File)
}

func TestExportJSONKeepsOrderAndOmitsAbsentCells(t *testing.T) {
	repo := seed(t)

	exp, err := export(t, repo, 1, results.FormatJSON, results.ByID(10))
	require.NoError(t, err)
	assert.Equal(t,
		`{"Main(10)":{"alice":{"points":87,"time":1.5},"bob":{"points":60}}}`,
		string(exp.Body))
}

func TestExportCSVHeader(t *testing.T) {
	repo := seed(t)

	exp, err := export(t, repo, 1, results.FormatCSV, results.ByID(10))
	require.NoError(t, err)
	assert.Equal(t, "text/csv", exp.ContentType)

	records, err := csv.NewReader(bytes.NewReader(exp.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"participant", "points(1)", "time(3)"}, records[0])
	assert.Equal(t, []string{"alice", "87", "1.5"}, records[1])
	assert.Equal(t, []string{"bob", "60", ""}, records[2])
}

func TestExportCSVSeveralLeaderboards(t *testing.T) {
	repo := seed(t)

	exp, err := export(t, repo, 1, results.FormatCSV, results.All())
	require.NoError(t, err)

	blocks := strings.Split(strings.TrimSuffix(string(exp.Body), "\n"), "\n\n")
	require.Len(t, blocks, 3)
	assert.True(t, strings.HasPrefix(blocks[0], "participant,points(1),time(3)\n"))
	assert.Equal(t, "participant,points(4)\nbob,70", blocks[1])
	assert.Equal(t, "participant,extra(5)\nalice,5", blocks[2])
}

func TestExportZIP(t *testing.T) {
	repo := seed(t)

	exp, err := export(t, repo, 1, results.FormatZIP, results.ByTitle("Main"))
	require.NoError(t, err)
	assert.Equal(t, "application/x-zip-compressed", exp.ContentType)
	assert.Equal(t, "Olympiad 2024.zip", exp.Filename)

	zr, err := zip.NewReader(bytes.NewReader(exp.Body), int64(len(exp.Body)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Main(10).csv", "Main (juniors)(11).csv"}, names)

	rc, err := zr.File[1].Open()
	require.NoError(t, err)
	defer rc.Close()
	records, err := csv.NewReader(rc).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"participant", "points(4)"}, {"bob", "70"}}, records)
}

func TestParseKey(t *testing.T) {
	title, id, ok := results.ParseKey(results.Key("Final (day 2)", 42))
	require.True(t, ok)
	assert.Equal(t, "Final (day 2)", title)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"Main", "Main(", "Main(x)", "Main(10) ", "(10"} {
		_, _, ok := results.ParseKey(bad)
		assert.False(t, ok, bad)
	}
}

func TestParseFormat(t *testing.T) {
	f, err := results.ParseFormat("zip")
	require.NoError(t, err)
	assert.Equal(t, results.FormatZIP, f)

	_, err = results.ParseFormat("xlsx")
	assert.True(t, srvcerror.IsCode(err, srvcerror.ErrCodeInvalidRequest))
}
