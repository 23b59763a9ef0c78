package newsapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// 上游两个版本的字段形态不一致（authors/keywords 可能是字符串或数组，
// id 可能是数字或字符串，published_date 通常是毫秒时间戳），
// 这里把差异收敛在解码边界，domain 只看到稳定结构。

// flexString 接受 JSON 字符串或数字。
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(b))
	}
	*s = flexString(n.String())
	return nil
}

// flexList 接受字符串（视为单元素）或字符串数组。
type flexList []string

func (l *flexList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*l = nil
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		if strings.TrimSpace(v) == "" {
			*l = nil
			return nil
		}
		*l = flexList{v}
		return nil
	}
	var vs []flexString
	if err := json.Unmarshal(b, &vs); err != nil {
		return err
	}
	out := make(flexList, 0, len(vs))
	for _, v := range vs {
		if s := strings.TrimSpace(string(v)); s != "" {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}

// epochTime 接受毫秒时间戳（数字或数字字符串）或 RFC3339 字符串；无法识别时为零值。
type epochTime time.Time

func (t *epochTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*t = epochTime{}
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		raw = strings.TrimSpace(v)
		if raw == "" {
			return nil
		}
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			*t = epochTime(ts.UTC())
			return nil
		}
	}
	ms, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// 日期不可解析按缺失处理，不让整条记录失败。
		return nil
	}
	*t = epochTime(time.UnixMilli(int64(ms)).UTC())
	return nil
}

func (t epochTime) Time() time.Time { return time.Time(t) }

type article struct {
	ID             flexString `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	TopImage       string     `json:"top_image"`
	Authors        flexList   `json:"authors"`
	PublisherTitle string     `json:"publisher_title"`
	PublisherLogo  string     `json:"publisher_logo"`
	PublishedDate  epochTime  `json:"published_date"`
	NewsHTML       string     `json:"news_html"`
	NewsText       string     `json:"news_text"`
	Keywords       flexList   `json:"keywords"`
	IsBot          *bool      `json:"isBot"`
	RelatedNews    []struct {
		ID    flexString `json:"id"`
		Title string     `json:"title"`
		URL   string     `json:"url"`
	} `json:"relatedNews"`
}

type summary struct {
	ID            flexString `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	TopImage      string     `json:"top_image"`
	PublishedDate epochTime  `json:"published_date"`
}
