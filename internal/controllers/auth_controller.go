package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fleet_tracker/internal/middleware"
	"fleet_tracker/internal/services"
)

type AuthController struct {
	users *services.UserService
	auth  *middleware.Auth
}

func NewAuthController(users *services.UserService, auth *middleware.Auth) *AuthController {
	return &AuthController{users: users, auth: auth}
}

type loginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userInput struct {
	Name     string   `json:"name"`
	Email    string   `json:"email" binding:"omitempty,email"`
	Mobile   string   `json:"mobile"`
	Username string   `json:"username" binding:"required"`
	Password string   `json:"password" binding:"required,min=6"`
	Roles    []string `json:"roles"`
}

type userUpdateInput struct {
	Name     string   `json:"name"`
	Email    string   `json:"email" binding:"omitempty,email"`
	Mobile   string   `json:"mobile"`
	Username string   `json:"username"`
	Password string   `json:"password" binding:"omitempty,min=6"`
	Roles    []string `json:"roles"`
}

func (in userUpdateInput) toService() services.UserUpdate {
	return services.UserUpdate{
		Name:     in.Name,
		Email:    in.Email,
		Mobile:   in.Mobile,
		Username: in.Username,
		Password: in.Password,
		Roles:    in.Roles,
	}
}

type passwordInput struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// Login checks credentials and returns a signed token with the user.
func (ac *AuthController) Login(c *gin.Context) {
	// 1. bind credentials
	var body loginInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	// 2. check them against the stored hash
	user, err := ac.users.Authenticate(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		logrus.WithField("username", body.Username).Warn("Login failed.")
		respondError(c, err)
		return
	}
	// 3. issue the token
	token, err := ac.auth.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// CreateUser is the admin-only registration endpoint.
func (ac *AuthController) CreateUser(c *gin.Context) {
	var body userInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	user, err := ac.users.Create(c.Request.Context(), services.UserInput{
		Name:     body.Name,
		Email:    body.Email,
		Mobile:   body.Mobile,
		Username: body.Username,
		Password: body.Password,
		Roles:    body.Roles,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": user})
}

// ListUsers accepts ?page=&limit= paging.
func (ac *AuthController) ListUsers(c *gin.Context) {
	users, err := ac.users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, users)
}

func (ac *AuthController) GetUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	user, err := ac.users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}

// UpdateUser is the admin edit, which may also rename the account and change roles.
func (ac *AuthController) UpdateUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var body userUpdateInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	user, err := ac.users.Update(c.Request.Context(), id, body.toService(), true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}

// ResetPassword sets a new password for any account. The old one is checked
// only when given.
func (ac *AuthController) ResetPassword(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var body passwordInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if err := ac.users.ChangePassword(c.Request.Context(), id, body.OldPassword, body.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// Me returns the caller's own account.
func (ac *AuthController) Me(c *gin.Context) {
	user, err := ac.users.ByUsername(c.Request.Context(), middleware.Username(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}

// UpdateMe edits the caller's own profile. Username and roles stay as they are.
func (ac *AuthController) UpdateMe(c *gin.Context) {
	var body userUpdateInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	me, err := ac.users.ByUsername(c.Request.Context(), middleware.Username(c))
	if err != nil {
		respondError(c, err)
		return
	}
	user, err := ac.users.Update(c.Request.Context(), me.ID, body.toService(), false)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}

// ChangeMyPassword requires the current password.
func (ac *AuthController) ChangeMyPassword(c *gin.Context) {
	var body passwordInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if body.OldPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "old_password is required"})
		return
	}
	me, err := ac.users.ByUsername(c.Request.Context(), middleware.Username(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := ac.users.ChangePassword(c.Request.Context(), me.ID, body.OldPassword, body.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

func (ac *AuthController) ListDrivers(c *gin.Context) {
	drivers, err := ac.users.Drivers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": drivers})
}
