package handler

import (
	"notero/dto"
	"notero/usecase"
	"notero/utils"

	"github.com/gin-gonic/gin"
)

func RegistrationHandler(c *gin.Context, userService *usecase.UserService) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	user, err := userService.Register(c, req.Username, req.Email, req.Password)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Created(c, user)
}

func LoginHandler(c *gin.Context, userService *usecase.UserService) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	user, token, err := userService.Login(c, req.Email, req.Password, c.GetHeader("User-Agent"))
	if err != nil {
		if utils.IsValidation(err) {
			utils.Unauthorized(c, "invalid email or password")
			return
		}
		utils.Error(c, err)
		return
	}

	utils.Success(c, dto.LoginResponse{Token: token, User: user})
}

func GetUserProfileHandler(c *gin.Context, userService *usecase.UserService) {
	user, err := userService.GetProfile(c, c.GetString("user_id"))
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, user)
}
