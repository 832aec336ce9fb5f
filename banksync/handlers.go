package banksync

import (
	"fmt"
	"net/http"

	"bitbucket.org/australdata/gestion_backend/config"
	"github.com/gin-gonic/gin"
)

type SyncMovementsRequest struct {
	BankAccountId int             `json:"bankAccountId" binding:"required"`
	Movements     []MovementInput `json:"movements" binding:"required,dive"`
}

func SyncMovementsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SyncMovementsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		summary, err := SyncMovements(c.Request.Context(), config.GetDB(), req.BankAccountId, req.Movements, config.GetLogger())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		summary.Message = fmt.Sprintf("reconciled %d of %d movements",
			summary.CreatedCount+summary.UpdatedCount, summary.TotalMovements)
		c.JSON(http.StatusOK, summary)
	}
}
