package dto

import "notero/model"

type CreateTagRequest struct {
	Content   string   `json:"content" binding:"required"`
	BelongsTo []string `json:"belongs_to"`
}

func (r *CreateTagRequest) ToPayload(userUID string) *model.CreateTagPayload {
	return &model.CreateTagPayload{
		UserUID:   userUID,
		Content:   r.Content,
		BelongsTo: r.BelongsTo,
	}
}
