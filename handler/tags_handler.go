package handler

import (
	"notero/dto"
	"notero/usecase"
	"notero/utils"

	"github.com/gin-gonic/gin"
)

func CreateTagHandler(c *gin.Context, tagsService *usecase.TagsService) {
	var req dto.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	tag, err := tagsService.CreateTag(c, req.ToPayload(c.GetString("user_id")))
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Created(c, tag)
}

func GetTagHandler(c *gin.Context, tagsService *usecase.TagsService) {
	tag, err := tagsService.GetTag(c, c.Param("id"))
	if err != nil {
		utils.Error(c, err)
		return
	}
	if tag == nil {
		utils.NotFound(c, "tag not found")
		return
	}

	utils.Success(c, tag)
}

func GetUserTagsHandler(c *gin.Context, tagsService *usecase.TagsService) {
	tags, err := tagsService.GetUserTags(c, c.GetString("user_id"))
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, tags)
}

func GetTagSuggestionsHandler(c *gin.Context, tagsService *usecase.TagsService) {
	suggestions, err := tagsService.SuggestTags(c, c.GetString("user_id"), c.Query("q"))
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, suggestions)
}
