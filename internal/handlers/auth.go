package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/iamminhquan/jewelry-store/internal/auth"
	"github.com/iamminhquan/jewelry-store/internal/hash"
	"github.com/iamminhquan/jewelry-store/internal/models"
	"github.com/iamminhquan/jewelry-store/internal/mykafka"
)

type AuthHandler struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
	Producer      *mykafka.Producer
}

func (h *AuthHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, mykafka.TopicUserEvents, fmt.Sprint(event["accountID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Address  string `json:"address"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password required")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	account := models.Account{
		Username:     req.Username,
		PasswordHash: pwHash,
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		Role:         models.RoleCustomer,
		Status:       models.AccountActive,
	}
	if err := h.DB.Create(&account).Error; err != nil {
		return echo.NewHTTPError(http.StatusConflict, "username already taken")
	}

	h.publish(c, map[string]any{
		"type":      "account_registered",
		"accountID": account.ID,
		"username":  account.Username,
	})
	return c.JSON(http.StatusOK, account)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var account models.Account
	if err := h.DB.Where("username = ?", req.Username).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !hash.CheckPassword(account.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	accessToken, err := auth.SignAccessToken(account.ID, account.Role, h.JWTSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	refreshToken, err := auth.SignRefreshToken(account.ID, account.Role, h.RefreshSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := auth.SaveRefreshToken(h.DB, refreshToken, account.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	c.SetCookie(auth.CreateCookie("accessToken", accessToken, "/", time.Now().Add(15*time.Minute)))
	c.SetCookie(auth.CreateCookie("refreshToken", refreshToken, "/", time.Now().Add(7*24*time.Hour)))

	h.publish(c, map[string]any{
		"type":      "account_login",
		"accountID": account.ID,
	})
	return c.JSON(http.StatusOK, map[string]any{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func (h *AuthHandler) LogOut(c echo.Context) error {
	cookie, err := c.Cookie("refreshToken")
	if err == nil && cookie.Value != "" {
		ts := auth.TokenService{DB: h.DB, JWTSecret: h.JWTSecret, RefreshSecret: h.RefreshSecret}
		if err := ts.RevokeRefresh(cookie.Value); err != nil {
			c.Logger().Errorf("revoke refresh error: %v", err)
		}
	}

	c.SetCookie(auth.CreateCookie("accessToken", "", "/", time.Unix(0, 0)))
	c.SetCookie(auth.CreateCookie("refreshToken", "", "/", time.Unix(0, 0)))
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) Profile(c echo.Context) error {
	accountID, err := auth.AccountID(c)
	if err != nil {
		return err
	}

	var account models.Account
	if err := h.DB.First(&account, accountID).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "account not found")
	}
	return c.JSON(http.StatusOK, account)
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	accountID, err := auth.AccountID(c)
	if err != nil {
		return err
	}

	var req struct {
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Address  string `json:"address"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var account models.Account
	if err := h.DB.First(&account, accountID).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "account not found")
	}

	account.FullName = req.FullName
	account.Email = req.Email
	account.Phone = req.Phone
	account.Address = req.Address
	if err := h.DB.Save(&account).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, account)
}
