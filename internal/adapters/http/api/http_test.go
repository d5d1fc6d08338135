package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	api "github.com/openfrag/agmmr/internal/adapters/http/api"
	"github.com/openfrag/agmmr/internal/adapters/repository"
	service "github.com/openfrag/agmmr/internal/app"
	"github.com/openfrag/agmmr/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// stubDeps implements api.Dependencies and api.StatsProvider for handler tests.
type stubDeps struct {
	submitted    []model.MatchSubmission
	duplicate    bool
	submitErr    error
	reprocessed  int
	reprocessErr error
	matchDetails []*model.MatchStatRecord
	matchErr     error
	player       *model.PlayerRecord
	history      []*model.MatchStatRecord
	profileErr   error
	leaders      []*model.PlayerRecord
	leadersErr   error
}

func (s *stubDeps) SubmitMatch(_ context.Context, sub model.MatchSubmission) (bool, error) {
	s.submitted = append(s.submitted, sub)
	return s.duplicate, s.submitErr
}

func (s *stubDeps) Reprocess(context.Context) (int, error) {
	return s.reprocessed, s.reprocessErr
}

func (s *stubDeps) MatchDetails(context.Context, int64) ([]*model.MatchStatRecord, error) {
	return s.matchDetails, s.matchErr
}

func (s *stubDeps) PlayerProfile(context.Context, string) (*model.PlayerRecord, []*model.MatchStatRecord, error) {
	return s.player, s.history, s.profileErr
}

func (s *stubDeps) Leaderboard(context.Context, int) ([]*model.PlayerRecord, error) {
	return s.leaders, s.leadersErr
}

func (s *stubDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newMux(deps *stubDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, deps).Register(context.Background(), mux)
	return mux
}

func validBody() []byte {
	body := map[string]interface{}{
		"match_id": 42,
		"details": []map[string]interface{}{
			{"player_id": "p1", "side": "blue", "frags": 20, "deaths": 5, "damage_dealt": 2500, "damage_taken": 1500},
			{"player_id": "p2", "side": "red", "frags": 10, "deaths": 15, "damage_dealt": 1500, "damage_taken": 2200},
		},
	}
	b, _ := json.Marshal(body)
	return b
}

func TestMatchDetailsEndpoint(t *testing.T) {
	Convey("Given the match-details endpoint", t, func() {
		deps := &stubDeps{}
		mux := newMux(deps)

		post := func(body []byte) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/match-details", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			return rec
		}

		Convey("When posting a valid submission", func() {
			rec := post(validBody())

			Convey("Then the submission is acknowledged", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				So(len(deps.submitted), ShouldEqual, 1)
				So(deps.submitted[0].MatchID, ShouldEqual, 42)
				So(len(deps.submitted[0].Records), ShouldEqual, 2)
			})

			Convey("Then a request id header is set", func() {
				So(rec.Header().Get("X-Request-ID"), ShouldNotBeEmpty)
			})
		})

		Convey("When posting malformed JSON", func() {
			rec := post([]byte("{nope"))

			Convey("Then the request is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(len(deps.submitted), ShouldEqual, 0)
			})
		})

		Convey("When posting without a match id", func() {
			body := []byte(`{"details":[{"player_id":"p1","side":"blue"},{"player_id":"p2","side":"red"}]}`)
			rec := post(body)

			Convey("Then validation fails", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When posting a one-sided match", func() {
			body := []byte(`{"match_id":1,"details":[{"player_id":"p1","side":"blue"},{"player_id":"p2","side":"blue"}]}`)
			rec := post(body)

			Convey("Then validation fails", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When posting uneven sides", func() {
			body := []byte(`{"match_id":1,"details":[{"player_id":"p1","side":"blue"},{"player_id":"p2","side":"blue"},{"player_id":"p3","side":"red"}]}`)
			rec := post(body)

			Convey("Then validation fails", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When posting negative stats", func() {
			body := []byte(`{"match_id":1,"details":[{"player_id":"p1","side":"blue","deaths":-1},{"player_id":"p2","side":"red"}]}`)
			rec := post(body)

			Convey("Then validation fails", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the match id was already submitted", func() {
			deps.duplicate = true
			rec := post(validBody())

			Convey("Then the response reports the duplicate", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "duplicate")
			})
		})

		Convey("When the queue is full", func() {
			deps.submitErr = service.ErrBackpressure
			rec := post(validBody())

			Convey("Then the caller is told to back off", func() {
				So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
			})
		})

		Convey("When using the wrong method", func() {
			req := httptest.NewRequest(http.MethodGet, "/match-details", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the method is refused", func() {
				So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestReprocessEndpoint(t *testing.T) {
	Convey("Given the reprocess endpoint", t, func() {
		deps := &stubDeps{reprocessed: 8}
		mux := newMux(deps)

		Convey("When triggering a replay", func() {
			req := httptest.NewRequest(http.MethodPost, "/reprocess", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the record count is reported", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"records_processed":8`)
			})
		})

		Convey("When the replay fails", func() {
			deps.reprocessErr = fmt.Errorf("corrupt history")
			req := httptest.NewRequest(http.MethodPost, "/reprocess", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the failure surfaces as a server error", func() {
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})

		Convey("When using the wrong method", func() {
			req := httptest.NewRequest(http.MethodGet, "/reprocess", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the method is refused", func() {
				So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestMatchesEndpoint(t *testing.T) {
	Convey("Given the matches endpoint", t, func() {
		deps := &stubDeps{
			matchDetails: []*model.MatchStatRecord{
				{MatchID: 42, PlayerID: "p1", Side: "blue", Frags: 20, MMRDelta: 11, MMRAfterMatch: 1011},
				{MatchID: 42, PlayerID: "p2", Side: "red", Frags: 10, MMRDelta: -11, MMRAfterMatch: 989},
			},
		}
		mux := newMux(deps)

		Convey("When fetching a known match", func() {
			req := httptest.NewRequest(http.MethodGet, "/matches/42", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the per-player stats come back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"match_id":42`)
				So(rec.Body.String(), ShouldContainSubstring, `"player_id":"p1"`)
				So(rec.Body.String(), ShouldContainSubstring, `"player_id":"p2"`)
			})
		})

		Convey("When the match does not exist", func() {
			deps.matchErr = fmt.Errorf("lookup: %w", repository.ErrMatchNotFound)
			req := httptest.NewRequest(http.MethodGet, "/matches/404", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then a 404 is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the match id is not a positive number", func() {
			req := httptest.NewRequest(http.MethodGet, "/matches/latest", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the request is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When using the wrong method", func() {
			req := httptest.NewRequest(http.MethodPost, "/matches/42", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the method is refused", func() {
				So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestPlayersEndpoint(t *testing.T) {
	Convey("Given the players endpoint", t, func() {
		deps := &stubDeps{
			player: &model.PlayerRecord{PlayerID: "p1", MMR: 1200, SkillMu: 26, SkillSigma: 7},
			history: []*model.MatchStatRecord{
				{MatchID: 1, PlayerID: "p1", Side: "blue", MMRDelta: 1200, MMRAfterMatch: 1200},
			},
		}
		mux := newMux(deps)

		Convey("When fetching a known player", func() {
			req := httptest.NewRequest(http.MethodGet, "/players/p1", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the profile comes back with history", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"player_id":"p1"`)
				So(rec.Body.String(), ShouldContainSubstring, `"history"`)
			})
		})

		Convey("When the player does not exist", func() {
			deps.profileErr = fmt.Errorf("lookup: %w", repository.ErrPlayerNotFound)
			req := httptest.NewRequest(http.MethodGet, "/players/nobody", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then a 404 is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the path has no player id", func() {
			req := httptest.NewRequest(http.MethodGet, "/players/", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the request is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestLeaderboardEndpoint(t *testing.T) {
	Convey("Given the leaderboard endpoint", t, func() {
		deps := &stubDeps{
			leaders: []*model.PlayerRecord{
				{PlayerID: "high", MMR: 1500},
				{PlayerID: "low", MMR: 900},
			},
		}
		mux := newMux(deps)

		Convey("When fetching the leaderboard", func() {
			req := httptest.NewRequest(http.MethodGet, "/leaderboard?limit=2", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the players come back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"high"`)
			})
		})

		Convey("When the limit is not a positive number", func() {
			req := httptest.NewRequest(http.MethodGet, "/leaderboard?limit=zero", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the request is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestOperationalEndpoints(t *testing.T) {
	Convey("Given the operational endpoints", t, func() {
		mux := newMux(&stubDeps{})

		Convey("When probing liveness", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the probe succeeds", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "ok")
			})
		})

		Convey("When scraping metrics", func() {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the scrape succeeds", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When reading stats", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the stats come back as JSON", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"started":true`)
			})
		})
	})
}
