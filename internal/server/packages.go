package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	catalogdomain "github.com/hashyield/powergrid/internal/catalog/domain"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type packageView struct {
	ID            snowflake.ID    `json:"id"`
	Title         string          `json:"title"`
	Tier          int16           `json:"tier"`
	DailyYieldPct decimal.Decimal `json:"daily_yield_pct"`
	Price         decimal.Decimal `json:"price"`
	Description   string          `json:"description"`
	Upgradable    bool            `json:"upgradable"`
}

func (s *Server) ListPackages(c *gin.Context) {
	packages, err := s.catalogSvc.ListActive(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	lang := requestLanguage(c)
	views := make([]packageView, 0, len(packages))
	for _, pkg := range packages {
		views = append(views, newPackageView(pkg, lang))
	}
	c.JSON(http.StatusOK, gin.H{"data": views})
}

func (s *Server) GetPackage(c *gin.Context) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	pkg, err := s.catalogSvc.GetByID(c.Request.Context(), snowflake.ID(id))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": newPackageView(*pkg, requestLanguage(c))})
}

func newPackageView(pkg catalogdomain.PowerPackage, lang string) packageView {
	return packageView{
		ID:            pkg.ID,
		Title:         localize(pkg.Title, lang),
		Tier:          pkg.Tier,
		DailyYieldPct: pkg.DailyYieldPct,
		Price:         pkg.Price,
		Description:   localize(pkg.Description, lang),
		Upgradable:    pkg.Upgradable,
	}
}

// requestLanguage reduces Accept-Language to a bare primary tag ("en-US,
// en;q=0.9" yields "en").
func requestLanguage(c *gin.Context) string {
	header := c.GetHeader("Accept-Language")
	lang := strings.TrimSpace(strings.Split(header, ",")[0])
	if i := strings.IndexAny(lang, "-;"); i >= 0 {
		lang = lang[:i]
	}
	return strings.ToLower(lang)
}

// localize picks the requested language from a localized document, falling
// back to English, then to any value present.
func localize(doc datatypes.JSONMap, lang string) string {
	if len(doc) == 0 {
		return ""
	}
	if lang != "" {
		if v, ok := doc[lang].(string); ok {
			return v
		}
	}
	if v, ok := doc["en"].(string); ok {
		return v
	}
	for _, v := range doc {
		if text, ok := v.(string); ok {
			return text
		}
	}
	return ""
}
