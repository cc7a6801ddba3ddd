package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func authTestRouter() *gin.Engine {
	r := gin.New()
	r.POST("/api/register", RegisterHandler)
	r.POST("/api/login", LoginHandler)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestRegisterHandler_Success(t *testing.T) {
	r := authTestRouter()

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	sqlMock.ExpectCommit()

	rr := postJSON(t, r, "/api/register", gin.H{
		"username":     "newagent",
		"email":        "agent@example.com",
		"password":     "secret123",
		"phone_number": "+111222333",
	})

	assert.Equal(t, http.StatusCreated, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "User registered", resp["message"])
	_, err := uuid.Parse(resp["user_id"])
	assert.NoError(t, err, "user_id should be a uuid, got %q", resp["user_id"])

	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestRegisterHandler_MissingFields(t *testing.T) {
	r := authTestRouter()

	rr := postJSON(t, r, "/api/register", gin.H{"username": "only"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Short passwords are rejected by binding.
	rr = postJSON(t, r, "/api/register", gin.H{
		"username":     "x",
		"email":        "x@example.com",
		"password":     "short",
		"phone_number": "+1",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func mockUserRow(t *testing.T, username, email, password string) (*sqlmock.Rows, uuid.UUID) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	id := uuid.New()
	rows := sqlmock.NewRows([]string{"user_id", "username", "email", "password", "phone_number", "role"}).
		AddRow(id, username, email, string(hash), "+1", "user")
	return rows, id
}

func TestLoginHandler_Success(t *testing.T) {
	r := authTestRouter()

	rows, _ := mockUserRow(t, "alice", "alice@example.com", "password123")
	sqlMock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1 OR email = $2`)).
		WithArgs("alice", "alice", 1).
		WillReturnRows(rows)

	rr := postJSON(t, r, "/api/login", gin.H{"username": "alice", "password": "password123"})

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestLoginHandler_ByEmail(t *testing.T) {
	r := authTestRouter()

	rows, _ := mockUserRow(t, "alice", "alice@example.com", "password123")
	sqlMock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1 OR email = $2`)).
		WithArgs("alice@example.com", "alice@example.com", 1).
		WillReturnRows(rows)

	rr := postJSON(t, r, "/api/login", gin.H{"username": "alice@example.com", "password": "password123"})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestLoginHandler_WrongPassword(t *testing.T) {
	r := authTestRouter()

	rows, _ := mockUserRow(t, "alice", "alice@example.com", "password123")
	sqlMock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1 OR email = $2`)).
		WithArgs("alice", "alice", 1).
		WillReturnRows(rows)

	rr := postJSON(t, r, "/api/login", gin.H{"username": "alice", "password": "wrong"})

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid username or password")
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestLoginHandler_UnknownUser(t *testing.T) {
	r := authTestRouter()

	sqlMock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1 OR email = $2`)).
		WithArgs("ghost", "ghost", 1).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	rr := postJSON(t, r, "/api/login", gin.H{"username": "ghost", "password": "whatever"})

	// Unknown user and wrong password are indistinguishable to the caller.
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}
