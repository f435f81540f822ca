package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/goserg/ratingengine/internal/config"
	"github.com/goserg/ratingengine/internal/service"
	"github.com/goserg/ratingengine/internal/storage/file"
	"github.com/goserg/ratingengine/internal/web/webpath"
)

type ServerSuite struct {
	suite.Suite
	log    *logrus.Logger
	engine *service.Engine
	server *Server
}

func TestServer(t *testing.T) {
	suite.Run(t, &ServerSuite{})
}

func (s *ServerSuite) SetupTest() {
	s.log = logrus.New()
	s.log.SetOutput(io.Discard)
	s.start(s.newStorage("json"), service.WithRejectBackdated(true))
}

func (s *ServerSuite) start(st *file.Storage, opts ...service.Option) {
	s.engine = service.New(st, s.log, opts...)
	s.Require().NoError(s.engine.Load(context.Background()))
	s.server = New(s.engine, config.Server{}, s.log)
	s.server.now = func() time.Time {
		return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	}
}

func (s *ServerSuite) TearDownTest() {
	s.Require().NoError(s.engine.Close())
}

func (s *ServerSuite) do(method, target, body string) (*http.Response, []byte) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.server.app.Test(req, -1)
	s.Require().NoError(err)
	data, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp, data
}

func (s *ServerSuite) submit(date, a, b, winner string) int {
	body, err := json.Marshal(createMatch{Date: date, CompetitorA: a, CompetitorB: b, Winner: winner})
	s.Require().NoError(err)
	resp, _ := s.do(http.MethodPost, webpath.ApiMatches, string(body))
	return resp.StatusCode
}

func (s *ServerSuite) TestSubmitAndRatings() {
	resp, data := s.do(http.MethodPost, webpath.ApiMatches,
		`{"date":"2024-05-01","competitor_a":"Alice","competitor_b":"Bob","winner":"Alice"}`)
	s.Equal(http.StatusCreated, resp.StatusCode)
	s.NotEmpty(resp.Header.Get(requestIDHeader))

	var sub submissionView
	s.Require().NoError(json.Unmarshal(data, &sub))
	s.Equal(changeView{Name: "Alice", Before: 1500, After: 1516}, sub.Winner)
	s.Equal(changeView{Name: "Bob", Before: 1500, After: 1484}, sub.Loser)
	s.False(sub.Backdated)

	resp, data = s.do(http.MethodGet, webpath.ApiRatings, "")
	s.Equal(http.StatusOK, resp.StatusCode)
	var standings []standingView
	s.Require().NoError(json.Unmarshal(data, &standings))
	s.Equal([]standingView{
		{Rank: 1, Name: "Alice", Rating: 1516},
		{Rank: 2, Name: "Bob", Rating: 1484},
	}, standings)
}

func (s *ServerSuite) TestSubmitWithoutDate() {
	s.Equal(http.StatusCreated, s.submit("", "Alice", "Bob", "Bob"))
	s.Require().Len(s.engine.Matches(), 1)
	s.Equal(time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), s.engine.Matches()[0].Date)
}

func (s *ServerSuite) TestSubmitInvalid() {
	for name, body := range map[string]string{
		"self match":     `{"date":"2024-05-01","competitor_a":"Alice","competitor_b":"Alice","winner":"Alice"}`,
		"outsider":       `{"date":"2024-05-01","competitor_a":"Alice","competitor_b":"Bob","winner":"Carol"}`,
		"missing names":  `{"date":"2024-05-01","winner":"Carol"}`,
		"bad date":       `{"date":"May 1","competitor_a":"Alice","competitor_b":"Bob","winner":"Bob"}`,
		"malformed json": `{"date":`,
	} {
		resp, data := s.do(http.MethodPost, webpath.ApiMatches, body)
		s.Equal(http.StatusBadRequest, resp.StatusCode, name)

		var errResp errorResponse
		s.Require().NoError(json.Unmarshal(data, &errResp), name)
		s.NotEmpty(errResp.Errors, name)
		s.Equal(resp.Header.Get(requestIDHeader), errResp.RequestID, name)
	}
	s.Empty(s.engine.Matches())
}

func (s *ServerSuite) TestSubmitBackdatedRejected() {
	s.Equal(http.StatusCreated, s.submit("2024-05-02", "Alice", "Bob", "Alice"))
	s.Equal(http.StatusConflict, s.submit("2024-05-01", "Alice", "Bob", "Bob"))
	s.Len(s.engine.Matches(), 1)
}

func (s *ServerSuite) TestRatingCard() {
	s.Equal(http.StatusCreated, s.submit("2024-05-01", "Alice", "Bob", "Alice"))
	s.Equal(http.StatusCreated, s.submit("2024-05-02", "Bob", "Carol Ann", "Bob"))

	resp, data := s.do(http.MethodGet, webpath.ApiRatings+"/Carol%20Ann", "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var card cardView
	s.Require().NoError(json.Unmarshal(data, &card))
	s.Equal("Carol Ann", card.Name)
	s.Equal(3, card.Rank)
	s.Equal(0, card.Wins)
	s.Equal(1, card.Losses)
	s.Len(card.Trajectory, 1)
	s.InDelta(1483.2637, card.Rating, 1e-4)

	resp, _ = s.do(http.MethodGet, webpath.ApiRatings+"/Nobody", "")
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *ServerSuite) TestMatchesOrder() {
	s.start(s.newStorage("cbor"))
	s.Equal(http.StatusCreated, s.submit("2024-05-03", "Alice", "Bob", "Alice"))
	s.Equal(http.StatusCreated, s.submit("2024-05-01", "Bob", "Carol", "Carol"))

	var matches []matchView
	_, data := s.do(http.MethodGet, webpath.ApiMatches, "")
	s.Require().NoError(json.Unmarshal(data, &matches))
	s.Equal([]string{"2024-05-03", "2024-05-01"}, dates(matches))

	_, data = s.do(http.MethodGet, webpath.ApiMatches+"?order=chronological", "")
	s.Require().NoError(json.Unmarshal(data, &matches))
	s.Equal([]string{"2024-05-01", "2024-05-03"}, dates(matches))

	s.Equal(http.StatusCreated, s.submit("2024-05-03", "Carol", "Alice", "Alice"))
	_, data = s.do(http.MethodGet, webpath.ApiMatches+"?order=recent", "")
	s.Require().NoError(json.Unmarshal(data, &matches))
	s.Equal([]string{"2024-05-03", "2024-05-03", "2024-05-01"}, dates(matches))
	s.Equal("Carol", matches[0].CompetitorA, "same-day matches list the later submission first")

	resp, _ := s.do(http.MethodGet, webpath.ApiMatches+"?order=random", "")
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *ServerSuite) TestTrajectory() {
	s.Equal(http.StatusCreated, s.submit("2024-05-01", "Alice", "Bob", "Alice"))
	s.Equal(http.StatusCreated, s.submit("2024-05-02", "Bob", "Carol", "Bob"))

	var points []pointView
	_, data := s.do(http.MethodGet, webpath.ApiTrajectory, "")
	s.Require().NoError(json.Unmarshal(data, &points))
	s.Require().Len(points, 4)
	s.Equal(pointView{Seq: 0, Date: "2024-05-01", Competitor: "Alice", Opponent: "Bob", Won: true, Rating: 1516, Change: 16}, points[0])

	_, data = s.do(http.MethodGet, webpath.ApiTrajectory+"?competitor=Bob", "")
	s.Require().NoError(json.Unmarshal(data, &points))
	s.Len(points, 2)

	resp, _ := s.do(http.MethodGet, webpath.ApiTrajectory+"?competitor=Zed", "")
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *ServerSuite) TestVerifyAndReset() {
	s.Equal(http.StatusCreated, s.submit("2024-05-01", "Alice", "Bob", "Alice"))

	var report verifyView
	_, data := s.do(http.MethodGet, webpath.ApiVerify, "")
	s.Require().NoError(json.Unmarshal(data, &report))
	s.True(report.Consistent)
	s.Empty(report.Drift)

	resp, _ := s.do(http.MethodDelete, webpath.ApiMatches, "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Empty(s.engine.Snapshot())
	s.Empty(s.engine.Matches())

	var standings []standingView
	_, data = s.do(http.MethodGet, webpath.ApiRatings, "")
	s.Require().NoError(json.Unmarshal(data, &standings))
	s.Empty(standings)
}

func (s *ServerSuite) TestMetrics() {
	s.Equal(http.StatusCreated, s.submit("2024-05-01", "Alice", "Bob", "Alice"))

	resp, data := s.do(http.MethodGet, webpath.Metrics, "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(string(data), "ratingengine_matches_submitted_total 1")
}

func (s *ServerSuite) TestIndex() {
	resp, data := s.do(http.MethodGet, webpath.Api, "")
	s.Equal(http.StatusOK, resp.StatusCode)
	var paths map[string]string
	s.Require().NoError(json.Unmarshal(data, &paths))
	s.Equal(webpath.ApiMatches, paths["Matches"])
}

func (s *ServerSuite) TestRequestIDPassthrough() {
	req := httptest.NewRequest(http.MethodGet, webpath.ApiRatings, nil)
	req.Header.Set(requestIDHeader, "abc-123")
	resp, err := s.server.app.Test(req, -1)
	s.Require().NoError(err)
	s.Equal("abc-123", resp.Header.Get(requestIDHeader))
}

func (s *ServerSuite) newStorage(encoding string) *file.Storage {
	codec, err := file.CodecByName(encoding)
	s.Require().NoError(err)
	st, err := file.New(s.log, s.T().TempDir(), codec)
	s.Require().NoError(err)
	return st
}

func dates(matches []matchView) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Date)
	}
	return out
}
