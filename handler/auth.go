package handler

import (
	"net/http"
	"time"

	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/config"
	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/middleware"
	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/model"
	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/view"
	"github.com/gin-gonic/gin"
)

// AuthHandler serves the login page and manages the session cookie.
type AuthHandler struct {
	config    *config.Config
	loginPath string
	homeFor   func(role string) string
}

func NewAuthHandler(cfg *config.Config, loginPath string, homeFor func(role string) string) *AuthHandler {
	return &AuthHandler{
		config:    cfg,
		loginPath: loginPath,
		homeFor:   homeFor,
	}
}

// LoginPage renders the login form. An already logged-in user goes
// straight to their home page.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if session, ok := middleware.GetSession(c); ok {
		c.Redirect(http.StatusFound, h.homeFor(session.Type))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(view.LoginUI(view.LoginData{
		LoginPath: h.loginPath,
	})))
}

// Login checks the submitted credentials, sets the session cookie and
// redirects to the role's home page.
func (h *AuthHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	user := h.config.FindUser(email)
	if user == nil || user.Password != password {
		c.Data(http.StatusUnauthorized, "text/html; charset=utf-8", []byte(view.LoginUI(view.LoginData{
			LoginPath: h.loginPath,
			Error:     "Email ou mot de passe invalide",
		})))
		return
	}

	session := model.Session{Type: user.Type, Email: user.Email}
	token, expiresAt, err := middleware.GenerateToken(session, &h.config.Auth)
	if err != nil {
		c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", []byte(view.ErrorUI("Erreur 500")))
		return
	}

	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, h.homeFor(session.Type))
}

// Logout clears the session cookie and returns to the login page.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, h.loginPath)
}
