package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	intconfig "tiketbus/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthOperator mirrors the operator payload returned on login.
type AuthOperator struct {
	ID        int64  `json:"id"`
	CompanyID int64  `json:"company_id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Status    string `json:"status"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /api/auth/login
func (h Handler) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	var (
		op           AuthOperator
		passwordHash string
	)
	err := intconfig.DB.QueryRow(`
        SELECT id, company_id, name, username, COALESCE(role,'operator'), status, password_hash
        FROM operators
        WHERE username = ?
    `, req.Username).Scan(
		&op.ID,
		&op.CompanyID,
		&op.Name,
		&op.Username,
		&op.Role,
		&op.Status,
		&passwordHash,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			RespondError(c, http.StatusUnauthorized, "username atau password salah", nil)
		} else {
			RespondError(c, http.StatusInternalServerError, "gagal query operator", err)
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		RespondError(c, http.StatusUnauthorized, "username atau password salah", nil)
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"operator_id": op.ID,
		"company_id":  op.CompanyID,
		"role":        op.Role,
		"exp":         time.Now().Add(24 * time.Hour).Unix(),
	})
	tokenString, err := token.SignedString([]byte(h.Env.JWTSecret))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal membuat token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    tokenString,
		"operator": op,
	})
}

type registerRequest struct {
	CompanyID int64  `json:"company_id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

// POST /api/auth/register
func (h Handler) Register(c *gin.Context) {
	var req registerRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	var exists int
	if err := intconfig.DB.QueryRow(`
        SELECT COUNT(*) FROM operators WHERE username = ?
    `, req.Username).Scan(&exists); err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal cek operator", err)
		return
	}
	if exists > 0 {
		RespondError(c, http.StatusBadRequest, "username sudah terdaftar", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal meng-hash password", err)
		return
	}

	res, err := intconfig.DB.Exec(`
        INSERT INTO operators (company_id, name, username, password_hash, role, status, created_at, updated_at)
        VALUES (?, ?, ?, ?, 'operator', 'active', NOW(), NOW())
    `, req.CompanyID, req.Name, req.Username, string(hash))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal menyimpan operator", err)
		return
	}

	id, _ := res.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{
		"message": "registrasi berhasil",
		"operator": gin.H{
			"id":         id,
			"company_id": req.CompanyID,
			"name":       req.Name,
			"username":   req.Username,
			"role":       "operator",
			"status":     "active",
		},
	})
}
