// Package docs holds the OpenAPI document served under /api/v1/swagger.
// Keep it in sync with the handler annotations: swag init -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"contact": {
			"name": "API Support"
		},
		"license": {
			"name": "MIT",
			"url": "https://opensource.org/licenses/MIT"
		},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/admin/feature-flags": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"admin"
				],
				"summary": "Feature flag state",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object",
							"properties": {
								"flags": {
									"type": "object",
									"additionalProperties": {
										"type": "boolean"
									}
								}
							}
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/auth/signup": {
			"post": {
				"description": "Registers a username and email and mails a confirmation code. Repeating the exact pair sends the code again.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Register or resend a confirmation code",
				"parameters": [
					{
						"description": "Signup request",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/service.SignUpInput"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object",
							"properties": {
								"email": {
									"type": "string"
								},
								"username": {
									"type": "string"
								}
							}
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/auth/token": {
			"post": {
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Exchange a confirmation code for a bearer token",
				"parameters": [
					{
						"description": "Token request",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/service.TokenInput"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object",
							"properties": {
								"token": {
									"type": "string"
								}
							}
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/categories": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"categories"
				],
				"summary": "List categories",
				"parameters": [
					{
						"type": "string",
						"description": "Name substring",
						"name": "search",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page size",
						"name": "limit",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Offset",
						"name": "offset",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Page-models_Category"
						}
					}
				}
			},
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"categories"
				],
				"summary": "Create a category",
				"parameters": [
					{
						"description": "Category",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/service.TaxonInput"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/models.Category"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/categories/{slug}": {
			"delete": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"description": "Titles in the category are kept with no category.",
				"tags": [
					"categories"
				],
				"summary": "Delete a category",
				"parameters": [
					{
						"type": "string",
						"description": "Category slug",
						"name": "slug",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/genres": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"genres"
				],
				"summary": "List genres",
				"parameters": [
					{
						"type": "string",
						"description": "Name substring",
						"name": "search",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page size",
						"name": "limit",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Offset",
						"name": "offset",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Page-models_Genre"
						}
					}
				}
			},
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"genres"
				],
				"summary": "Create a genre",
				"parameters": [
					{
						"description": "Genre",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/service.TaxonInput"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/models.Genre"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/genres/{slug}": {
			"delete": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"tags": [
					"genres"
				],
				"summary": "Delete a genre",
				"parameters": [
					{
						"type": "string",
						"description": "Genre slug",
						"name": "slug",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/titles": {
			"get": {
				"description": "Filters combine with AND. name is a substring match; category and genre match slugs.",
				"produces": [
					"application/json"
				],
				"tags": [
					"titles"
				],
				"summary": "List titles",
				"parameters": [
					{
						"type": "string",
						"description": "Category slug",
						"name": "category",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Genre slug",
						"name": "genre",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Name substring",
						"name": "name",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Release year",
						"name": "year",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page size",
						"name": "limit",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Offset",
						"name": "offset",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Page-models_Title"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			},
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"titles"
				],
				"summary": "Create a title",
				"parameters": [
					{
						"description": "Title",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/service.CreateTitleInput"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/models.Title"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/titles/{titleId}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"titles"
				],
				"summary": "Get a title with its rating",
				"parameters": [
					{
						"type": "integer",
						"description": "Title ID",
						"name": "titleId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Title"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"tags": [
					"titles"
				],
				"summary": "Delete a title with its reviews and comments",
				"parameters": [
					{
						"type": "integer",
						"description": "Title ID",
						"name": "titleId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			},
			"patch": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"description": "A genre list replaces the current set. An empty category clears it.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"titles"
				],
				"summary": "Partially update a title",
				"parameters": [
					{
						"type": "integer",
						"description": "Title ID",
						"name": "titleId",
						"in": "path",
						"required": true
					},
					{
						"description": "Changes",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/service.UpdateTitleInput"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Title"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/titles/{titleId}/reviews": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"reviews"
				],
				"summary": "List a title's reviews",
				"parameters": [
					{
						"type": "integer",
						"description": "Title ID",
						"name": "titleId",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Page size",
						"name": "limit",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Offset",
						"name": "offset",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Page-models_Review"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			},
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"description": "Each user may review a title once.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"reviews"
				],
				"summary": "Review a title",
				"parameters": [
					{
						"type": "integer",
						"description": "Title ID",
						"name": "titleId",
						"in": "path",
						"required": true
					},
					{
						"description": "Review",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/service.CreateReviewInput"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/models.Review"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/titles/{titleId}/reviews/{reviewId}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"reviews"
				],
				"summary": "Get a review",
				"parameters": [
					{
						"type": "integer",
						"description": "Title ID",
						"name": "titleId",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Review ID",
						"name": "reviewId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Review"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"tags": [
					"reviews"
				],
				"summary": "Delete a review and its comments",
				"parameters": [
					{
						"type": "integer",
						"description": "Title ID",
						"name": "titleId",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Review ID",
						"name": "reviewId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			},
			"patch": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"reviews"
				],
				"summary": "Edit a review",
				"parameters": [
					{
						"type": "integer",
						"description": "Title ID",
						"name": "titleId",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Review ID",
						"name": "reviewId",
						"in": "path",
						"required": true
					},
					{
						"description": "Changes",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/service.UpdateReviewInput"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Review"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/titles/{titleId}/reviews/{reviewId}/comments": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"comments"
				],
				"summary": "List a review's comments",
				"parameters": [
					{
						"type": "integer",
						"description": "Title ID",
						"name": "titleId",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Review ID",
						"name": "reviewId",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Page size",
						"name": "limit",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Offset",
						"name": "offset",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Page-models_Comment"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			},
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"comments"
				],
				"summary": "Comment on a review",
				"parameters": [
					{
						"type": "integer",
						"description": "Title ID",
						"name": "titleId",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Review ID",
						"name": "reviewId",
						"in": "path",
						"required": true
					},
					{
						"description": "Comment",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/service.CommentInput"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/models.Comment"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/titles/{titleId}/reviews/{reviewId}/comments/{commentId}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"comments"
				],
				"summary": "Get a comment",
				"parameters": [
					{
						"type": "integer",
						"description": "Title ID",
						"name": "titleId",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Review ID",
						"name": "reviewId",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Comment ID",
						"name": "commentId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Comment"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"tags": [
					"comments"
				],
				"summary": "Delete a comment",
				"parameters": [
					{
						"type": "integer",
						"description": "Title ID",
						"name": "titleId",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Review ID",
						"name": "reviewId",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Comment ID",
						"name": "commentId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			},
			"patch": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"comments"
				],
				"summary": "Edit a comment",
				"parameters": [
					{
						"type": "integer",
						"description": "Title ID",
						"name": "titleId",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Review ID",
						"name": "reviewId",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Comment ID",
						"name": "commentId",
						"in": "path",
						"required": true
					},
					{
						"description": "Comment",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/service.CommentInput"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Comment"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/users": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"users"
				],
				"summary": "List users",
				"parameters": [
					{
						"type": "string",
						"description": "Username substring",
						"name": "search",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page size",
						"name": "limit",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Offset",
						"name": "offset",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Page-models_User"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			},
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"users"
				],
				"summary": "Create a user",
				"parameters": [
					{
						"description": "User",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/service.CreateUserInput"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/models.User"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/users/me": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"users"
				],
				"summary": "Get the current user's profile",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.User"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			},
			"patch": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"description": "The role field is ignored.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"users"
				],
				"summary": "Update the current user's profile",
				"parameters": [
					{
						"description": "Changes",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/service.UpdateUserInput"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.User"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/users/{username}": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"users"
				],
				"summary": "Get a user by username",
				"parameters": [
					{
						"type": "string",
						"description": "Username",
						"name": "username",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.User"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"tags": [
					"users"
				],
				"summary": "Delete a user with their reviews and comments",
				"parameters": [
					{
						"type": "string",
						"description": "Username",
						"name": "username",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			},
			"patch": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"users"
				],
				"summary": "Update a user",
				"parameters": [
					{
						"type": "string",
						"description": "Username",
						"name": "username",
						"in": "path",
						"required": true
					},
					{
						"description": "Changes",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/service.UpdateUserInput"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.User"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"models.Category": {
			"type": "object",
			"properties": {
				"name": {
					"type": "string"
				},
				"slug": {
					"type": "string"
				}
			}
		},
		"models.Comment": {
			"type": "object",
			"properties": {
				"author": {
					"type": "string"
				},
				"id": {
					"type": "integer"
				},
				"pub_date": {
					"type": "string"
				},
				"text": {
					"type": "string"
				}
			}
		},
		"models.ErrorResponse": {
			"type": "object",
			"properties": {
				"code": {
					"type": "string"
				},
				"details": {
					"type": "string"
				},
				"error": {
					"type": "string"
				},
				"fields": {
					"type": "object",
					"additionalProperties": {
						"type": "array",
						"items": {
							"type": "string"
						}
					}
				}
			}
		},
		"models.Genre": {
			"type": "object",
			"properties": {
				"name": {
					"type": "string"
				},
				"slug": {
					"type": "string"
				}
			}
		},
		"models.Page-models_Category": {
			"type": "object",
			"properties": {
				"count": {
					"type": "integer"
				},
				"next": {
					"type": "string"
				},
				"previous": {
					"type": "string"
				},
				"results": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/models.Category"
					}
				}
			}
		},
		"models.Page-models_Comment": {
			"type": "object",
			"properties": {
				"count": {
					"type": "integer"
				},
				"next": {
					"type": "string"
				},
				"previous": {
					"type": "string"
				},
				"results": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/models.Comment"
					}
				}
			}
		},
		"models.Page-models_Genre": {
			"type": "object",
			"properties": {
				"count": {
					"type": "integer"
				},
				"next": {
					"type": "string"
				},
				"previous": {
					"type": "string"
				},
				"results": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/models.Genre"
					}
				}
			}
		},
		"models.Page-models_Review": {
			"type": "object",
			"properties": {
				"count": {
					"type": "integer"
				},
				"next": {
					"type": "string"
				},
				"previous": {
					"type": "string"
				},
				"results": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/models.Review"
					}
				}
			}
		},
		"models.Page-models_Title": {
			"type": "object",
			"properties": {
				"count": {
					"type": "integer"
				},
				"next": {
					"type": "string"
				},
				"previous": {
					"type": "string"
				},
				"results": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/models.Title"
					}
				}
			}
		},
		"models.Page-models_User": {
			"type": "object",
			"properties": {
				"count": {
					"type": "integer"
				},
				"next": {
					"type": "string"
				},
				"previous": {
					"type": "string"
				},
				"results": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/models.User"
					}
				}
			}
		},
		"models.Review": {
			"type": "object",
			"properties": {
				"author": {
					"type": "string"
				},
				"id": {
					"type": "integer"
				},
				"pub_date": {
					"type": "string"
				},
				"score": {
					"type": "integer"
				},
				"text": {
					"type": "string"
				}
			}
		},
		"models.Role": {
			"type": "string",
			"enum": [
				"user",
				"moderator",
				"admin"
			],
			"x-enum-varnames": [
				"RoleUser",
				"RoleModerator",
				"RoleAdmin"
			]
		},
		"models.Title": {
			"type": "object",
			"properties": {
				"category": {
					"$ref": "#/definitions/models.Category"
				},
				"description": {
					"type": "string"
				},
				"genre": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/models.Genre"
					}
				},
				"id": {
					"type": "integer"
				},
				"name": {
					"type": "string"
				},
				"rating": {
					"type": "integer"
				},
				"year": {
					"type": "integer"
				}
			}
		},
		"models.User": {
			"type": "object",
			"properties": {
				"bio": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"first_name": {
					"type": "string"
				},
				"last_name": {
					"type": "string"
				},
				"role": {
					"$ref": "#/definitions/models.Role"
				},
				"username": {
					"type": "string"
				}
			}
		},
		"service.CommentInput": {
			"type": "object",
			"required": [
				"text"
			],
			"properties": {
				"text": {
					"type": "string"
				}
			}
		},
		"service.CreateReviewInput": {
			"type": "object",
			"required": [
				"score",
				"text"
			],
			"properties": {
				"score": {
					"type": "integer",
					"minimum": 1,
					"maximum": 10
				},
				"text": {
					"type": "string"
				}
			}
		},
		"service.CreateTitleInput": {
			"type": "object",
			"required": [
				"name",
				"year"
			],
			"properties": {
				"category": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"genre": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"name": {
					"type": "string",
					"maxLength": 256
				},
				"year": {
					"type": "integer"
				}
			}
		},
		"service.CreateUserInput": {
			"type": "object",
			"required": [
				"email",
				"username"
			],
			"properties": {
				"bio": {
					"type": "string"
				},
				"email": {
					"type": "string",
					"maxLength": 254
				},
				"first_name": {
					"type": "string",
					"maxLength": 150
				},
				"last_name": {
					"type": "string",
					"maxLength": 150
				},
				"role": {
					"$ref": "#/definitions/models.Role"
				},
				"username": {
					"type": "string",
					"maxLength": 150
				}
			}
		},
		"service.SignUpInput": {
			"type": "object",
			"required": [
				"email",
				"username"
			],
			"properties": {
				"email": {
					"type": "string",
					"maxLength": 254
				},
				"username": {
					"type": "string",
					"maxLength": 150
				}
			}
		},
		"service.TaxonInput": {
			"type": "object",
			"required": [
				"name",
				"slug"
			],
			"properties": {
				"name": {
					"type": "string",
					"maxLength": 256
				},
				"slug": {
					"type": "string",
					"maxLength": 50
				}
			}
		},
		"service.TokenInput": {
			"type": "object",
			"required": [
				"confirmation_code",
				"username"
			],
			"properties": {
				"confirmation_code": {
					"type": "string"
				},
				"username": {
					"type": "string"
				}
			}
		},
		"service.UpdateReviewInput": {
			"type": "object",
			"properties": {
				"score": {
					"type": "integer",
					"minimum": 1,
					"maximum": 10
				},
				"text": {
					"type": "string"
				}
			}
		},
		"service.UpdateTitleInput": {
			"type": "object",
			"properties": {
				"category": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"genre": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"name": {
					"type": "string",
					"maxLength": 256
				},
				"year": {
					"type": "integer"
				}
			}
		},
		"service.UpdateUserInput": {
			"type": "object",
			"properties": {
				"bio": {
					"type": "string"
				},
				"email": {
					"type": "string",
					"maxLength": 254
				},
				"first_name": {
					"type": "string",
					"maxLength": 150
				},
				"last_name": {
					"type": "string",
					"maxLength": 150
				},
				"role": {
					"$ref": "#/definitions/models.Role"
				},
				"username": {
					"type": "string",
					"maxLength": 150
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"description": "Type \"Bearer\" followed by a space and JWT token.",
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Critique API",
	Description:      "Catalog of titles with user reviews, comments and aggregate ratings",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
