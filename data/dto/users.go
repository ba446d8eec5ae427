package dto

type UpdateUserRequestBody struct {
	Name  *string
	Email *string
}
