package handler

import (
	"notero/dto"
	"notero/usecase"
	"notero/utils"

	"github.com/gin-gonic/gin"
)

func CreateNoteHandler(c *gin.Context, notesService *usecase.NotesService) {
	var req dto.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	note, err := notesService.CreateNote(c, req.ToPayload(c.GetString("user_id")))
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Created(c, note)
}

func GetNoteHandler(c *gin.Context, notesService *usecase.NotesService) {
	note, err := notesService.GetNote(c, c.Param("id"))
	if err != nil {
		utils.Error(c, err)
		return
	}
	if note == nil {
		utils.NotFound(c, "note not found")
		return
	}

	utils.Success(c, note)
}

func GetUserNotesHandler(c *gin.Context, notesService *usecase.NotesService) {
	notes, err := notesService.GetUserNotes(c, c.GetString("user_id"))
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, notes)
}

func UpdateNoteHandler(c *gin.Context, notesService *usecase.NotesService) {
	var req dto.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	note, err := notesService.UpdateNote(c, c.Param("id"), req.ToPayload())
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, note)
}

func DeleteNoteHandler(c *gin.Context, notesService *usecase.NotesService) {
	note, err := notesService.DeleteNote(c, c.Param("id"))
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, note)
}

func RemoveTagFromNoteHandler(c *gin.Context, notesService *usecase.NotesService) {
	note, err := notesService.RemoveTagFromNote(c, c.Param("id"), c.Param("tagId"))
	if err != nil {
		utils.Error(c, err)
		return
	}
	if note == nil {
		utils.NotFound(c, "note not found")
		return
	}

	utils.Success(c, note)
}

func MarkTodoAsDoneHandler(c *gin.Context, notesService *usecase.NotesService) {
	note, err := notesService.MarkTodoAsDone(c, c.Param("id"))
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, note)
}

func MarkTodoAsNotDoneHandler(c *gin.Context, notesService *usecase.NotesService) {
	note, err := notesService.MarkTodoAsNotDone(c, c.Param("id"))
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, note)
}

func AddChecklistItemHandler(c *gin.Context, notesService *usecase.NotesService) {
	var req dto.ChecklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	note, err := notesService.AddChecklistItem(c, c.Param("id"), req.ToModel())
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, note)
}

func RemoveChecklistItemHandler(c *gin.Context, notesService *usecase.NotesService) {
	note, err := notesService.RemoveChecklistItem(c, c.Param("id"), c.Param("itemId"))
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, note)
}

func ToggleChecklistItemHandler(c *gin.Context, notesService *usecase.NotesService) {
	note, err := notesService.ToggleChecklistItem(c, c.Param("id"), c.Param("itemId"))
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, note)
}
