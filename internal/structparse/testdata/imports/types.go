package imports

import (
	"time"

	"github.com/shopspring/decimal"
	_ "embed"
	. "strings"
	orm "gorm.io/gorm"
)

var _ = Builder{}

// Order 用于测试导入信息提取和别名处理
type Order struct {
	ID        int64
	Amount    decimal.Decimal
	Items     map[string][]*decimal.Decimal
	CreatedAt time.Time
	DeletedAt orm.DeletedAt `gorm:"index"`
}
