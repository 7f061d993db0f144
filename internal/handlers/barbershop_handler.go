package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/NavalhaClub/barber-agenda/internal/httperr"
	"github.com/NavalhaClub/barber-agenda/internal/middleware"
	"github.com/NavalhaClub/barber-agenda/internal/models"
	"github.com/NavalhaClub/barber-agenda/internal/storage"
)

type BarbershopHandler struct {
	db       *gorm.DB
	uploader *storage.Uploader
}

func NewBarbershopHandler(db *gorm.DB, uploader *storage.Uploader) *BarbershopHandler {
	return &BarbershopHandler{db: db, uploader: uploader}
}

type UpdateBarbershopConfigRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`

	Timezone            *string `json:"timezone"`
	MinAdvanceMinutes   *int    `json:"min_advance_minutes"`
	SlotStepMinutes     *int    `json:"slot_step_minutes"`
	PendingGraceMinutes *int    `json:"pending_grace_minutes"`
}

func (h *BarbershopHandler) loadShop(c *gin.Context) (*models.Barbershop, bool) {
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	var shop models.Barbershop
	if err := h.db.First(&shop, barbershopID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "barbershop_not_found", "Barbearia não encontrada.")
			return nil, false
		}
		httperr.Internal(c, "failed_to_get_barbershop", "Erro ao buscar dados da barbearia.")
		return nil, false
	}
	return &shop, true
}

func (h *BarbershopHandler) GetMeBarbershop(c *gin.Context) {
	shop, ok := h.loadShop(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, shop)
}

func (h *BarbershopHandler) UpdateMeBarbershop(c *gin.Context) {
	shop, ok := h.loadShop(c)
	if !ok {
		return
	}

	var req UpdateBarbershopConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos na requisição.")
		return
	}

	if req.Name != nil {
		shop.Name = *req.Name
	}
	if req.Phone != nil {
		shop.Phone = *req.Phone
	}
	if req.Address != nil {
		shop.Address = *req.Address
	}

	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			httperr.BadRequest(c, "invalid_timezone", "Fuso horário inválido (use nome IANA, ex: America/Sao_Paulo).")
			return
		}
		shop.Timezone = *req.Timezone
	}

	if req.MinAdvanceMinutes != nil {
		if *req.MinAdvanceMinutes < 0 {
			httperr.BadRequest(c, "invalid_min_advance", "Antecedência mínima deve ser zero ou positiva (em minutos).")
			return
		}
		shop.MinAdvanceMinutes = *req.MinAdvanceMinutes
	}

	if req.SlotStepMinutes != nil {
		if *req.SlotStepMinutes < 5 || *req.SlotStepMinutes > 240 {
			httperr.BadRequest(c, "invalid_slot_step", "Passo da grade deve ficar entre 5 e 240 minutos.")
			return
		}
		shop.SlotStepMinutes = *req.SlotStepMinutes
	}

	if req.PendingGraceMinutes != nil {
		if *req.PendingGraceMinutes < 0 {
			httperr.BadRequest(c, "invalid_pending_grace", "Prazo de aprovação deve ser zero ou positivo (em minutos).")
			return
		}
		shop.PendingGraceMinutes = *req.PendingGraceMinutes
	}

	if err := h.db.Save(shop).Error; err != nil {
		httperr.Internal(c, "failed_to_update_barbershop", "Erro ao salvar as configurações da barbearia.")
		return
	}

	c.JSON(http.StatusOK, shop)
}

// UploadLogo recebe multipart (campo "logo"), normaliza e sobe pro S3.
func (h *BarbershopHandler) UploadLogo(c *gin.Context) {
	shop, ok := h.loadShop(c)
	if !ok {
		return
	}

	if h.uploader == nil || !h.uploader.Enabled() {
		httperr.BadRequest(c, "storage_not_configured", "Upload de logo não está habilitado neste ambiente.")
		return
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		httperr.BadRequest(c, "missing_logo_file", "Arquivo de logo obrigatório (campo 'logo').")
		return
	}

	if fileHeader.Size > 5<<20 {
		httperr.BadRequest(c, "logo_too_large", "Logo deve ter no máximo 5MB.")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httperr.Internal(c, "failed_to_read_logo", "Erro ao ler o arquivo.")
		return
	}
	defer file.Close()

	url, err := h.uploader.UploadLogo(c.Request.Context(), shop.ID, file)
	if err != nil {
		httperr.Internal(c, "failed_to_upload_logo", "Erro ao enviar a logo.")
		return
	}

	shop.LogoURL = url
	if err := h.db.Save(shop).Error; err != nil {
		httperr.Internal(c, "failed_to_update_barbershop", "Erro ao salvar a logo.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"logo_url": url})
}
