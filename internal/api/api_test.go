package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rpsarena/rps-arena-go/internal/api"
	"github.com/rpsarena/rps-arena-go/internal/factory"
	"github.com/rpsarena/rps-arena-go/internal/testutil"
)

// APISuite drives the HTTP surface end to end against memory storage
type APISuite struct {
	suite.Suite
	app    *factory.TestApp
	server *httptest.Server
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.app.MockRandom.QueueString("MATCH1", "MATCH2", "MATCH3")

	router := api.NewRouter(api.RouterConfig{
		Logger:          testutil.NopLogger(),
		Storage:         s.app.Storage,
		AuthService:     s.app.AuthService,
		MatchController: s.app.MatchController,
		RankingService:  s.app.RankingService,
		Broadcaster:     s.app.Broadcaster,
		HubManager:      s.app.HubManager,
		GlobalHub:       s.app.GlobalHub,
	})
	s.server = httptest.NewServer(router)
}

func (s *APISuite) TearDownTest() {
	s.server.Close()
	s.app.GlobalHub.Close()
}

// request sends a JSON request and decodes the JSON response into out
func (s *APISuite) request(method, path, token string, body any, out any) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, s.server.URL+path, &buf)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	if out != nil {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

type authPayload struct {
	User struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
	Token string `json:"token"`
}

type matchPayload struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Player1 struct {
		Username string `json:"username"`
	} `json:"player1"`
	Player2 *struct {
		Username string `json:"username"`
		Machine  bool   `json:"machine"`
	} `json:"player2"`
	Player1Score int `json:"player1Score"`
	Player2Score int `json:"player2Score"`
	Winner       *struct {
		ID string `json:"id"`
	} `json:"winner"`
	Rounds []struct {
		Number int    `json:"number"`
		Winner string `json:"winner"`
	} `json:"rounds"`
}

type playPayload struct {
	State         string       `json:"state"`
	MatchFinished bool         `json:"matchFinished"`
	Match         matchPayload `json:"match"`
}

func (s *APISuite) register(username string) authPayload {
	var out authPayload
	resp := s.request(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"password": "password123",
	}, &out)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	return out
}

func (s *APISuite) TestRegisterAndLogin() {
	reg := s.register("alice")
	s.Equal("alice", reg.User.Username)
	s.NotEmpty(reg.Token)

	var login authPayload
	resp := s.request(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "password123",
	}, &login)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(reg.User.ID, login.User.ID)
}

func (s *APISuite) TestRegisterValidation() {
	resp := s.request(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "ab",
		"password": "password123",
	}, nil)
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	s.register("alice")
	resp = s.request(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice",
		"password": "password123",
	}, nil)
	s.Equal(http.StatusConflict, resp.StatusCode)
}

func (s *APISuite) TestLoginBadPassword() {
	s.register("alice")
	resp := s.request(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrong-password",
	}, nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *APISuite) TestAuthRequired() {
	resp := s.request(http.MethodGet, "/api/v1/matches", "", nil, nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp = s.request(http.MethodGet, "/api/v1/users/me", "garbage-token", nil, nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *APISuite) TestGetMe() {
	reg := s.register("alice")

	var me struct {
		Username string  `json:"username"`
		WinRate  float64 `json:"winRate"`
	}
	resp := s.request(http.MethodGet, "/api/v1/users/me", reg.Token, nil, &me)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("alice", me.Username)
	s.Zero(me.WinRate)
}

func (s *APISuite) TestFullHumanMatchFlow() {
	alice := s.register("alice")
	bob := s.register("bob")

	// Alice opens a match
	var created matchPayload
	resp := s.request(http.MethodPost, "/api/v1/matches", alice.Token, nil, &created)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	s.Equal("waiting", created.Status)
	s.Nil(created.Player2)

	// Bob sees it in the open list
	var open []matchPayload
	resp = s.request(http.MethodGet, "/api/v1/matches", bob.Token, nil, &open)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Require().Len(open, 1)
	s.Equal(created.ID, open[0].ID)

	// Bob joins
	var joined matchPayload
	resp = s.request(http.MethodPost, fmt.Sprintf("/api/v1/matches/%s/join", created.ID), bob.Token, nil, &joined)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("playing", joined.Status)
	s.Require().NotNil(joined.Player2)
	s.Equal("bob", joined.Player2.Username)

	// Alice sweeps three rounds
	choicePath := fmt.Sprintf("/api/v1/matches/%s/choice", created.ID)
	var play playPayload
	for i := 0; i < 3; i++ {
		resp = s.request(http.MethodPost, choicePath, alice.Token, map[string]string{"choice": "rock"}, &play)
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		s.Equal("pending", play.State)

		resp = s.request(http.MethodPost, choicePath, bob.Token, map[string]string{"choice": "scissors"}, &play)
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		s.Equal("resolved", play.State)
	}

	s.True(play.MatchFinished)
	s.Equal("finished", play.Match.Status)
	s.Require().NotNil(play.Match.Winner)
	s.Equal(alice.User.ID, play.Match.Winner.ID)
	s.Len(play.Match.Rounds, 3)

	// The leaderboard reflects the result
	var ranking []struct {
		Rank     int    `json:"rank"`
		Username string `json:"username"`
		Wins     int    `json:"wins"`
	}
	resp = s.request(http.MethodGet, "/api/v1/ranking", alice.Token, nil, &ranking)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Require().Len(ranking, 2)
	s.Equal("alice", ranking[0].Username)
	s.Equal(1, ranking[0].Wins)
}

func (s *APISuite) TestMachineMatch() {
	alice := s.register("alice")
	s.app.MockRandom.QueueIntn(0, 0, 0) // machine plays rock

	var created matchPayload
	resp := s.request(http.MethodPost, "/api/v1/matches", alice.Token, map[string]any{"machine": true}, &created)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	s.Equal("playing", created.Status)
	s.Require().NotNil(created.Player2)
	s.True(created.Player2.Machine)

	choicePath := fmt.Sprintf("/api/v1/matches/%s/choice", created.ID)
	var play playPayload
	for i := 0; i < 3; i++ {
		resp = s.request(http.MethodPost, choicePath, alice.Token, map[string]string{"choice": "paper"}, &play)
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		s.Equal("resolved", play.State)
	}
	s.True(play.MatchFinished)
}

func (s *APISuite) TestChoiceErrors() {
	alice := s.register("alice")
	bob := s.register("bob")
	carol := s.register("carol")

	var created matchPayload
	s.request(http.MethodPost, "/api/v1/matches", alice.Token, nil, &created)
	s.request(http.MethodPost, fmt.Sprintf("/api/v1/matches/%s/join", created.ID), bob.Token, nil, nil)

	choicePath := fmt.Sprintf("/api/v1/matches/%s/choice", created.ID)

	resp := s.request(http.MethodPost, choicePath, alice.Token, map[string]string{"choice": "lizard"}, nil)
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = s.request(http.MethodPost, choicePath, carol.Token, map[string]string{"choice": "rock"}, nil)
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp = s.request(http.MethodPost, choicePath, alice.Token, map[string]string{"choice": "rock"}, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	resp = s.request(http.MethodPost, choicePath, alice.Token, map[string]string{"choice": "paper"}, nil)
	s.Equal(http.StatusConflict, resp.StatusCode)
}

func (s *APISuite) TestJoinErrors() {
	alice := s.register("alice")
	bob := s.register("bob")

	var created matchPayload
	s.request(http.MethodPost, "/api/v1/matches", alice.Token, nil, &created)

	// Self join
	resp := s.request(http.MethodPost, fmt.Sprintf("/api/v1/matches/%s/join", created.ID), alice.Token, nil, nil)
	s.Equal(http.StatusConflict, resp.StatusCode)

	// Unknown match
	resp = s.request(http.MethodPost, "/api/v1/matches/NOPE/join", bob.Token, nil, nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)

	// Second active match for the creator
	resp = s.request(http.MethodPost, "/api/v1/matches", alice.Token, nil, nil)
	s.Equal(http.StatusConflict, resp.StatusCode)
}

func (s *APISuite) TestMineAndAbandon() {
	alice := s.register("alice")

	resp := s.request(http.MethodGet, "/api/v1/matches/mine", alice.Token, nil, nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)

	var created matchPayload
	s.request(http.MethodPost, "/api/v1/matches", alice.Token, nil, &created)

	var mine matchPayload
	resp = s.request(http.MethodGet, "/api/v1/matches/mine", alice.Token, nil, &mine)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(created.ID, mine.ID)

	var abandoned matchPayload
	resp = s.request(http.MethodPost, fmt.Sprintf("/api/v1/matches/%s/abandon", created.ID), alice.Token, nil, &abandoned)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("abandoned", abandoned.Status)

	// The slot is free again
	resp = s.request(http.MethodPost, "/api/v1/matches", alice.Token, nil, nil)
	s.Equal(http.StatusCreated, resp.StatusCode)
}

func (s *APISuite) TestHealth() {
	resp, err := http.Get(s.server.URL + "/api/v1/health")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}
