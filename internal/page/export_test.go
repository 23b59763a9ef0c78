package page

import "github.com/PuerkitoBio/goquery"

type Selection = goquery.Selection

// goquerySelectionName 用于断言 head 子节点顺序：meta 附带 name/property。
func goquerySelectionName(s *Selection) string {
	n := goquery.NodeName(s)
	if n != "meta" {
		return n
	}
	if v, ok := s.Attr("name"); ok {
		return "meta:" + v
	}
	v, _ := s.Attr("property")
	return "meta:" + v
}
