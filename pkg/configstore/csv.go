// Package configstore 提供轮值配置的 CSV 存取
//
// 文件格式与字段约定：表头 name,weekday_blocks,date_blocks,fewer_shifts，
// 多值字段以分号连接，日期加前导撇号防止 Excel 自动转换，
// 读取时无损还原参与者名称、工作日阻塞、日期阻塞与少排班标记
package configstore

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lunzhi/lunzhi/pkg/errors"
	"github.com/lunzhi/lunzhi/pkg/model"
)

// utf8BOM Excel 识别 UTF-8 所需的字节序标记
const utf8BOM = "\xEF\xBB\xBF"

// Config 轮值配置
type Config struct {
	Participants []model.Participant `json:"participants"`
	ReducedLoad  []string            `json:"reduced_load,omitempty"`
}

// Save 将配置写入 CSV 文件
func Save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "创建配置文件失败")
	}
	defer f.Close()

	if _, err := f.WriteString(utf8BOM); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "写入配置文件失败")
	}

	reduced := make(map[string]bool, len(cfg.ReducedLoad))
	for _, p := range cfg.ReducedLoad {
		reduced[p] = true
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"name", "weekday_blocks", "date_blocks", "fewer_shifts"}); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "写入配置文件失败")
	}

	for _, p := range cfg.Participants {
		weekdays := make([]string, len(p.Constraint.BlockedWeekdays))
		for i, d := range p.Constraint.BlockedWeekdays {
			weekdays[i] = strconv.Itoa(int(d))
		}

		// 前导撇号保护日期不被 Excel 自动转换
		dates := make([]string, len(p.Constraint.BlockedDates))
		for i, d := range p.Constraint.BlockedDates {
			dates[i] = "'" + d
		}

		flag := "NO"
		if reduced[p.Name] {
			flag = "YES"
		}

		record := []string{
			p.Name,
			strings.Join(weekdays, ";"),
			strings.Join(dates, ";"),
			flag,
		}
		if err := w.Write(record); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "写入配置文件失败")
		}
	}

	w.Flush()
	return w.Error()
}

// Load 从 CSV 文件读取配置
// 日期字段容忍多种书写格式，统一归一化为 YYYY-MM-DD；
// 无法解析的字段立即报错，不做静默默认
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NotFound("配置文件", path).WithCause(err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConstraintParse, "读取配置文件失败")
	}
	if len(records) == 0 {
		return nil, errors.InvalidConfiguration("配置文件为空")
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{"name", "weekday_blocks", "date_blocks", "fewer_shifts"} {
		if _, ok := col[required]; !ok {
			return nil, errors.InvalidConfiguration("配置文件缺少列: " + required)
		}
	}

	cfg := &Config{}

	for _, record := range records[1:] {
		name := strings.TrimSpace(record[col["name"]])
		if name == "" {
			continue
		}

		constraint := model.Constraint{}

		for _, field := range splitMulti(record[col["weekday_blocks"]]) {
			n, err := strconv.Atoi(field)
			if err != nil {
				return nil, errors.ConstraintParse(name, "工作日字段无效: "+field)
			}
			if n < 0 || n > 6 {
				return nil, errors.ConstraintParse(name, "工作日索引超出 0-6 范围: "+field)
			}
			constraint.BlockedWeekdays = append(constraint.BlockedWeekdays, time.Weekday(n))
		}

		seen := make(map[string]bool)
		for _, field := range splitMulti(record[col["date_blocks"]]) {
			field = strings.TrimPrefix(field, "'")
			date, err := NormalizeDate(field)
			if err != nil {
				return nil, errors.ConstraintParse(name, "日期字段无效: "+field)
			}
			if !seen[date] {
				seen[date] = true
				constraint.BlockedDates = append(constraint.BlockedDates, date)
			}
		}

		cfg.Participants = append(cfg.Participants, model.Participant{
			Name:       name,
			Constraint: constraint,
		})

		if strings.EqualFold(strings.TrimSpace(record[col["fewer_shifts"]]), "YES") {
			cfg.ReducedLoad = append(cfg.ReducedLoad, name)
		}
	}

	return cfg, nil
}

// dateFormats 按尝试顺序排列的日期书写格式
var dateFormats = []string{
	"2006-01-02",
	"01/02/2006", // MM/DD/YYYY
	"02/01/2006", // DD/MM/YYYY
	"2006/01/02",
	"01-02-2006",
	"02-01-2006",
	"01/02/06",
	"02/01/06",
}

// NormalizeDate 将不同书写格式的日期归一化为 YYYY-MM-DD
func NormalizeDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return "", fmt.Errorf("日期为空")
	}

	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Format(model.DateLayout), nil
		}
	}

	return "", fmt.Errorf("无法解析日期: %s", date)
}

// splitMulti 拆分分号连接的多值字段
func splitMulti(field string) []string {
	var out []string
	for _, part := range strings.Split(field, ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
