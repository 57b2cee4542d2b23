package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/om-receipts/internal/cache"
	"github.com/noteduco342/om-receipts/internal/handlers"
	"github.com/noteduco342/om-receipts/internal/models"
	"github.com/noteduco342/om-receipts/internal/repository"
	"github.com/noteduco342/om-receipts/internal/service"
	"github.com/noteduco342/om-receipts/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "handler-test-secret"

type testServer struct {
	app  *fiber.App
	db   *gorm.DB
	fx   *testutil.Fixtures
	auth *service.AuthService
}

// newTestServer wires the full stack over in-memory SQLite and miniredis.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.NewTestDB(t)
	mr := miniredis.RunT(t)
	redisCache := cache.NewRedisCache(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = redisCache.Close() })

	logger := zerolog.Nop()

	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	readMarkRepo := repository.NewReadMarkRepository(db)
	groupReadStateRepo := repository.NewGroupReadStateRepository(db)

	authService := service.NewAuthService(userRepo, testJWTSecret)
	userService := service.NewUserService(userRepo, cache.NewAccountCache(redisCache))
	messageService := service.NewMessageService(messageRepo, groupRepo, userRepo, readMarkRepo, groupReadStateRepo)
	groupService := service.NewGroupService(groupRepo, groupReadStateRepo, userRepo)
	receiptService := service.NewReadReceiptService(messageService, readMarkRepo)

	app := fiber.New()
	handlers.SetupRoutes(app, handlers.Handlers{
		Auth:        handlers.NewAuthHandler(authService, logger),
		User:        handlers.NewUserHandler(userService, logger),
		Group:       handlers.NewGroupHandler(groupService, logger),
		Message:     handlers.NewMessageHandler(messageService, logger),
		ReadReceipt: handlers.NewReadReceiptHandler(receiptService, logger),
	}, handlers.RouteConfig{
		JWTSecret:     testJWTSecret,
		CSRFMode:      "token",
		AccountLookup: userService.AccountStatus,
	})

	return &testServer{
		app:  app,
		db:   db,
		fx:   testutil.NewFixtures(t, db),
		auth: authService,
	}
}

func (s *testServer) admin(t *testing.T, username string) *models.User {
	t.Helper()
	user := s.fx.User(username)
	require.NoError(t, s.db.Model(user).Update("role", models.AccountRoleAdmin).Error)
	user.Role = models.AccountRoleAdmin
	return user
}

// do sends a request as user (anonymous when nil) and returns the status
// and raw body.
func (s *testServer) do(t *testing.T, method, path string, user *models.User, body interface{}) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		token, err := s.auth.GenerateToken(user)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func (s *testServer) receipts(t *testing.T, user *models.User, path string) []uint {
	t.Helper()
	status, raw := s.do(t, http.MethodGet, path, user, nil)
	require.Equal(t, http.StatusOK, status, string(raw))

	var body models.ReadReceiptsResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	require.NotNil(t, body.UserIDs)
	return body.UserIDs
}
