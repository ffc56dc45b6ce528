package igdb

import (
	"fmt"
	"strings"
)

// gameFields games接口统一拉取的字段集
const gameFields = "id,name,slug,summary,rating,rating_count,total_rating_count,first_release_date,cover.url,genres.name,platforms.name"

// baseGameFilter 只要主体游戏：排除DLC/扩展包/合集（category=0）与版本变体
const baseGameFilter = "category = 0 & version_parent = null"

// Query Apicalypse查询构造器。Build输出字段顺序固定，
// 同一查询必然产出同一字符串——该字符串同时是缓存key的组成部分。
type Query struct {
	fields []string
	search string
	where  []string
	sort   string
	limit  int
	offset int
}

func NewQuery() *Query {
	return &Query{}
}

func (q *Query) Fields(fields string) *Query {
	q.fields = append(q.fields, fields)
	return q
}

// Search 名称模糊匹配。IGDB约定search与sort互斥，Build时search优先
func (q *Query) Search(term string) *Query {
	q.search = term
	return q
}

func (q *Query) Where(cond string) *Query {
	q.where = append(q.where, cond)
	return q
}

func (q *Query) Sort(expr string) *Query {
	q.sort = expr
	return q
}

func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

func (q *Query) Offset(n int) *Query {
	q.offset = n
	return q
}

// Build 产出归一化查询体，如：
// fields id,name; search "halo"; where category = 0; limit 20;
func (q *Query) Build() string {
	var b strings.Builder
	if len(q.fields) > 0 {
		fmt.Fprintf(&b, "fields %s; ", strings.Join(q.fields, ","))
	}
	if q.search != "" {
		fmt.Fprintf(&b, "search %q; ", q.search)
	}
	if len(q.where) > 0 {
		fmt.Fprintf(&b, "where %s; ", strings.Join(q.where, " & "))
	}
	if q.sort != "" && q.search == "" {
		fmt.Fprintf(&b, "sort %s; ", q.sort)
	}
	if q.limit > 0 {
		fmt.Fprintf(&b, "limit %d; ", q.limit)
	}
	if q.offset > 0 {
		fmt.Fprintf(&b, "offset %d; ", q.offset)
	}
	return strings.TrimSpace(b.String())
}
