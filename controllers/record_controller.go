package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kingfisher-trust/kingfisher-records/config"
	"github.com/kingfisher-trust/kingfisher-records/services"
)

// RepositoryPicker selects one entity's record store
type RepositoryPicker[T any, PT services.RecordPtr[T]] func(*services.Records) *services.Repository[T, PT]

func (pick RepositoryPicker[T, PT]) repository() *services.Repository[T, PT] {
	return pick(services.NewRecords(config.GetDB()))
}

// ListRecords handles GET /api/v1/<entity>; ?field=<tag>&q=<pattern> searches instead
func ListRecords[T any, PT services.RecordPtr[T]](pick RepositoryPicker[T, PT]) gin.HandlerFunc {
	return func(c *gin.Context) {
		repo := pick.repository()

		var (
			rows []T
			err  error
		)
		if field := c.Query("field"); field != "" {
			rows, err = repo.Search(c.Request.Context(), field, c.Query("q"))
		} else {
			rows, err = repo.List(c.Request.Context())
		}
		if err != nil {
			respondError(c, err)
			return
		}
		if rows == nil {
			rows = []T{}
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    rows,
			"count":   len(rows),
		})
	}
}

// GetRecord handles GET /api/v1/<entity>/:id
func GetRecord[T any, PT services.RecordPtr[T]](pick RepositoryPicker[T, PT]) gin.HandlerFunc {
	return func(c *gin.Context) {
		row, err := pick.repository().Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, row)
	}
}

// CreateRecord handles POST /api/v1/<entity>
func CreateRecord[T any, PT services.RecordPtr[T]](pick RepositoryPicker[T, PT]) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := currentSession(c)
		if !ok {
			return
		}

		row := PT(new(T))
		if err := c.ShouldBindJSON(row); err != nil {
			respondBindError(c, err)
			return
		}

		if err := pick.repository().Create(c.Request.Context(), sess, row); err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusCreated, row)
	}
}

// UpdateRecord handles PUT /api/v1/<entity>/:id
func UpdateRecord[T any, PT services.RecordPtr[T]](pick RepositoryPicker[T, PT]) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := currentSession(c)
		if !ok {
			return
		}

		row := PT(new(T))
		if err := c.ShouldBindJSON(row); err != nil {
			respondBindError(c, err)
			return
		}

		if err := pick.repository().Modify(c.Request.Context(), sess, c.Param("id"), row); err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, row)
	}
}

// DeleteRecord handles DELETE /api/v1/<entity>/:id
func DeleteRecord[T any, PT services.RecordPtr[T]](pick RepositoryPicker[T, PT]) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := currentSession(c)
		if !ok {
			return
		}

		if err := pick.repository().Remove(c.Request.Context(), sess, c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Record deleted",
		})
	}
}

// GetReferences handles GET /api/v1/<entity>/:id/references, naming the tables that
// would block deleting the record
func GetReferences[T any, PT services.RecordPtr[T]](pick RepositoryPicker[T, PT]) gin.HandlerFunc {
	return func(c *gin.Context) {
		repo := pick.repository()
		key := c.Param("id")
		if _, err := repo.Get(c.Request.Context(), key); err != nil {
			respondError(c, err)
			return
		}

		tables, err := repo.ReferencedBy(c.Request.Context(), key)
		if err != nil {
			respondError(c, err)
			return
		}
		if tables == nil {
			tables = []string{}
		}
		respondData(c, http.StatusOK, gin.H{
			"referencedBy": tables,
			"deletable":    len(tables) == 0,
		})
	}
}

// RegisterRecordRoutes mounts the list, get, references, create, update and delete handlers of one entity
func RegisterRecordRoutes[T any, PT services.RecordPtr[T]](group *gin.RouterGroup, path string, pick RepositoryPicker[T, PT]) {
	group.GET(path, ListRecords(pick))
	group.GET(path+"/:id", GetRecord(pick))
	group.GET(path+"/:id/references", GetReferences(pick))
	group.POST(path, CreateRecord(pick))
	group.PUT(path+"/:id", UpdateRecord(pick))
	group.DELETE(path+"/:id", DeleteRecord(pick))
}
