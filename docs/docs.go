// Package docs holds the Swagger document served under /swagger. Keep it in
// step with the handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/download/{jobId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Stream the mp4 of a completed job as an attachment",
                "produces": ["video/mp4"],
                "tags": ["Jobs"],
                "summary": "Download generated video",
                "parameters": [
                    {"type": "string", "description": "Job ID", "name": "jobId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/api/v1/image-to-video": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Queue an image-to-video generation job conditioned on the uploaded image.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Generation"],
                "summary": "Generate video from an image",
                "parameters": [
                    {"type": "string", "description": "Prompt", "name": "prompt", "in": "formData", "required": true},
                    {"type": "string", "description": "Negative prompt", "name": "negative_prompt", "in": "formData"},
                    {"type": "integer", "description": "Number of frames (default 121)", "name": "num_frames", "in": "formData"},
                    {"type": "integer", "description": "Seed (default 42)", "name": "seed", "in": "formData"},
                    {"type": "integer", "description": "Height (default 512)", "name": "height", "in": "formData"},
                    {"type": "integer", "description": "Width (default 768)", "name": "width", "in": "formData"},
                    {"type": "number", "description": "Frame rate (default 25)", "name": "frame_rate", "in": "formData"},
                    {"type": "integer", "description": "Inference steps (default 40)", "name": "num_inference_steps", "in": "formData"},
                    {"type": "number", "description": "CFG guidance scale (default 3.0)", "name": "cfg_guidance_scale", "in": "formData"},
                    {"type": "file", "description": "Conditioning image (JPEG, PNG, WEBP, BMP)", "name": "image", "in": "formData", "required": true}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/model.JobAcceptedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/api/v1/jobs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "List the most recent jobs, oldest first",
                "produces": ["application/json"],
                "tags": ["Jobs"],
                "summary": "List recent jobs",
                "parameters": [
                    {"type": "integer", "description": "Maximum number of jobs (default 20)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.JobListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/api/v1/jobs/{jobId}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Delete a job record and its files. Jobs that are processing cannot be deleted.",
                "produces": ["application/json"],
                "tags": ["Jobs"],
                "summary": "Delete job",
                "parameters": [
                    {"type": "string", "description": "Job ID", "name": "jobId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.JobDeleteResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/api/v1/status/{jobId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Get the lifecycle state of a generation job. output_url is set once completed.",
                "produces": ["application/json"],
                "tags": ["Jobs"],
                "summary": "Get job status",
                "parameters": [
                    {"type": "string", "description": "Job ID", "name": "jobId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.JobStatusResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/api/v1/text-to-video": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Queue a text-to-video generation job. Returns immediately with a job id.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Generation"],
                "summary": "Generate video from text",
                "parameters": [
                    {"description": "Generation request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.TextToVideoRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/model.JobAcceptedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Pipeline readiness, job counts and backing service status",
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Service health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.HealthResponse"}}
                }
            }
        },
        "/models": {
            "get": {
                "description": "The active model and its generation limits",
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Model information",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.ModelsResponse"}}
                }
            }
        }
    },
    "definitions": {
        "model.HealthResponse": {
            "type": "object",
            "properties": {
                "active_jobs": {"type": "integer"},
                "model": {"type": "string"},
                "pipeline_loaded": {"type": "boolean"},
                "queued_jobs": {"type": "integer"},
                "services": {"type": "object", "additionalProperties": {"type": "boolean"}},
                "status": {"type": "string"},
                "total_jobs": {"type": "integer"}
            }
        },
        "model.JobAcceptedResponse": {
            "type": "object",
            "properties": {
                "job_id": {"type": "string"},
                "status": {"$ref": "#/definitions/model.JobStatus"}
            }
        },
        "model.JobDeleteResponse": {
            "type": "object",
            "properties": {
                "job_id": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "model.JobListResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "jobs": {"type": "array", "items": {"$ref": "#/definitions/model.JobSummary"}}
            }
        },
        "model.JobStatus": {
            "type": "string",
            "enum": ["pending", "processing", "completed", "failed"],
            "x-enum-varnames": ["JobStatusPending", "JobStatusProcessing", "JobStatusCompleted", "JobStatusFailed"]
        },
        "model.JobStatusResponse": {
            "type": "object",
            "properties": {
                "completed_at": {"type": "string"},
                "created_at": {"type": "string"},
                "error": {"type": "string"},
                "job_id": {"type": "string"},
                "output_url": {"type": "string"},
                "remote_url": {"type": "string"},
                "started_at": {"type": "string"},
                "status": {"$ref": "#/definitions/model.JobStatus"}
            }
        },
        "model.JobSummary": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "job_id": {"type": "string"},
                "status": {"$ref": "#/definitions/model.JobStatus"}
            }
        },
        "model.ModelsResponse": {
            "type": "object",
            "properties": {
                "active_model": {"type": "string"},
                "capabilities": {"type": "array", "items": {"type": "string"}},
                "default_fps": {"type": "integer"},
                "max_frames": {"type": "integer"},
                "max_resolution": {"type": "string"},
                "quantization": {"type": "string"}
            }
        },
        "model.TextToVideoRequest": {
            "type": "object",
            "required": ["prompt"],
            "properties": {
                "cfg_guidance_scale": {"type": "number"},
                "frame_rate": {"type": "number"},
                "height": {"type": "integer"},
                "negative_prompt": {"type": "string"},
                "num_frames": {"type": "integer"},
                "num_inference_steps": {"type": "integer"},
                "prompt": {"type": "string"},
                "seed": {"type": "integer"},
                "width": {"type": "integer"}
            }
        },
        "response.ErrorDetail": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "details": {},
                "message": {"type": "string"}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/response.ErrorDetail"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Enter your bearer token in the format **Bearer &lt;token&gt;**",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8001",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "LTX Video API",
	Description:      "Asynchronous text-to-video and image-to-video generation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
