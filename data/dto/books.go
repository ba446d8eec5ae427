// Package dto defines partial-update request bodies. Nil fields mean
// "leave unchanged".
package dto

type UpdateBookRequestBody struct {
	Title     *string
	Author    *string
	Publisher *string
	Year      *int
	Category  *string
	Copies    *int
}
