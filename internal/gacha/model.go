package gacha

import (
	"errors"
	"fmt"
	"time"
)

// 错误类别。上层通过 errors.Is 区分处理策略。
var (
	// ErrUnknownPool 表示原始记录中的卡池名称不在7个已知卡池之内。
	// 出现该错误时整批转换失败，不会产出缺失卡池编码的记录。
	ErrUnknownPool = errors.New("未知的卡池类型")

	// ErrValidation 表示记录字段缺失或格式非法（数值字段无法解析等）。
	ErrValidation = errors.New("记录字段校验失败")
)

// TimeLayout 是游戏服务端抽卡时间字段的格式。
const TimeLayout = "2006-01-02 15:04:05"

// 抽卡时间均为游戏服务器时区（UTC+8）下的本地时间。
// 固定时区解析，保证同一批数据在任何主机上生成完全相同的id。
var serverTimeZone = time.FixedZone("UTC+8", 8*3600)

// RawPullRecord 是游戏服务端返回的单条抽卡记录（服务端原生形态）。
type RawPullRecord struct {
	// CardPoolType 是卡池的可读名称，固定取值共7种
	CardPoolType string `json:"cardPoolType"`

	// ResourceID 是抽到的物品ID
	ResourceID int `json:"resourceId"`

	// QualityLevel 是物品星级 1-5
	QualityLevel int `json:"qualityLevel"`

	// ResourceType 是物品类型，例如 "角色" / "武器"
	ResourceType string `json:"resourceType"`

	Name string `json:"name"`

	// Count 正常情况下为1
	Count int `json:"count"`

	// Time 格式为 "2006-01-02 15:04:05"
	Time string `json:"time"`
}

// Validate 检查原始记录的字段是否完整合法。
func (r *RawPullRecord) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: name为空", ErrValidation)
	}
	if r.QualityLevel < 1 || r.QualityLevel > 5 {
		return fmt.Errorf("%w: 非法的星级 %d", ErrValidation, r.QualityLevel)
	}
	if _, err := time.ParseInLocation(TimeLayout, r.Time, serverTimeZone); err != nil {
		return fmt.Errorf("%w: 非法的时间 %q", ErrValidation, r.Time)
	}
	return nil
}

// unixSeconds 返回记录时间在服务器时区下的unix秒。调用方需先通过Validate。
func (r *RawPullRecord) unixSeconds() (int64, error) {
	t, err := time.ParseInLocation(TimeLayout, r.Time, serverTimeZone)
	if err != nil {
		return 0, fmt.Errorf("%w: 非法的时间 %q", ErrValidation, r.Time)
	}
	return t.Unix(), nil
}

// CanonicalRecord 是WWGF标准的抽卡记录（厂商中立的交换格式）。
// 字段名与id方案是对外兼容面，任何改动都会破坏与其他导入导出工具的互通。
type CanonicalRecord struct {
	// GachaID 是4位卡池编码，"0001"-"0007"
	GachaID string `json:"gacha_id"`

	// GachaType 是由GachaID推导出的卡池可读名称
	GachaType string `json:"gacha_type"`

	ItemID string `json:"item_id"`
	Count  string `json:"count"`
	Time   string `json:"time"`
	Name   string `json:"name"`

	ItemType string `json:"item_type"`

	// RankType 是星级的字符串形式，"1"-"5"
	RankType string `json:"rank_type"`

	// ID 是全局唯一键：10位补零unix秒 + 4位卡池编码 + "000" + 2位补零序号
	ID string `json:"id"`
}

// Validate 检查WWGF记录的字段是否完整合法（用于导入外部文件）。
func (c *CanonicalRecord) Validate() error {
	if _, ok := poolLabelByCode[c.GachaID]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPool, c.GachaID)
	}
	if c.ID == "" {
		return fmt.Errorf("%w: id为空", ErrValidation)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: name为空", ErrValidation)
	}
	return nil
}

// ExportInfo 是导出文件的info块。
type ExportInfo struct {
	Lang             string `json:"lang"`
	RegionTimeZone   int    `json:"region_time_zone"`
	ExportTimestamp  int64  `json:"export_timestamp"`
	ExportApp        string `json:"export_app"`
	ExportAppVersion string `json:"export_app_version"`
	WWGFVersion      string `json:"wwgf_version"`
	UID              string `json:"uid"`
}

// ExportFile 是按玩家持久化的WWGF导出文件，也是外部工具互通的线上格式。
type ExportFile struct {
	Info ExportInfo        `json:"info"`
	List []CanonicalRecord `json:"list"`
}

// PoolCount 是固定的卡池数量。
const PoolCount = 7

// poolCodeByLabel 将服务端卡池名称映射为4位WWGF编码。
var poolCodeByLabel = map[string]string{
	"角色精准调谐":    "0001",
	"武器精准调谐":    "0002",
	"角色调谐（常驻池）": "0003",
	"武器调谐（常驻池）": "0004",
	"新手调谐":      "0005",
	"6":         "0006",
	"7":         "0007",
}

// poolTypeByCode 将卡池编码映射为WWGF的gacha_type名称。
var poolTypeByCode = map[string]string{
	"0001": "角色活动唤取",
	"0002": "武器活动唤取",
	"0003": "角色常驻唤取",
	"0004": "武器常驻唤取",
	"0005": "新手唤取",
	"0006": "新手自选唤取",
	"0007": "新手自选唤取（感恩定向唤取）",
}

// poolLabelByCode 是反向表，将卡池编码还原为服务端卡池名称。
// 注意0006/0007的还原结果与正向表并不对称，这是WWGF约定的一部分。
var poolLabelByCode = map[string]string{
	"0001": "角色精准调谐",
	"0002": "武器精准调谐",
	"0003": "角色调谐（常驻池）",
	"0004": "武器调谐（常驻池）",
	"0005": "新手调谐",
	"0006": "新手自选唤取",
	"0007": "新手自选唤取（感恩定向唤取）",
}

// PoolCodeByIndex 将卡池索引 1-7 转换为4位编码。
func PoolCodeByIndex(index int) (string, bool) {
	if index < 1 || index > PoolCount {
		return "", false
	}
	return fmt.Sprintf("%04d", index), true
}

// residentFiveStars 是常驻5星角色名单，用于区分"歪了"和"抽中UP"。
var residentFiveStars = map[string]bool{
	"鉴心":  true,
	"卡卡罗": true,
	"安可":  true,
	"维里奈": true,
	"凌阳":  true,
}

// IsResident 判断一个5星名称是否属于常驻名单。
func IsResident(name string) bool {
	return residentFiveStars[name]
}
