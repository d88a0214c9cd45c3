// Package query は社員集合に対する絞り込み・並び替え・ページングを提供します。
package query

import "time"

// Field はフィールド指定検索の対象です。
type Field string

const (
	FieldFirstName  Field = "nombre"
	FieldLastName   Field = "apellido"
	FieldEmail      Field = "email"
	FieldTitle      Field = "cargo"
	FieldDepartment Field = "departamento"
	// FieldAll は上記と状態を連結した仮想フィールドです。
	FieldAll Field = "todos"
)

var knownFields = []Field{FieldFirstName, FieldLastName, FieldEmail, FieldTitle, FieldDepartment, FieldAll}

// Operator は比較演算子です。空の場合は OpContains として扱います。
type Operator string

const (
	OpContains   Operator = "contiene"
	OpStartsWith Operator = "empiezaCon"
	OpEndsWith   Operator = "terminaCon"
	OpEquals     Operator = "igual"
	OpNotEquals  Operator = "diferente"
)

var knownOperators = []Operator{OpContains, OpStartsWith, OpEndsWith, OpEquals, OpNotEquals}

// SortField は並び替えキーです。
type SortField string

const (
	SortByID         SortField = "id"
	SortByFirstName  SortField = "nombre"
	SortByLastName   SortField = "apellido"
	SortByEmail      SortField = "email"
	SortByTitle      SortField = "cargo"
	SortByDepartment SortField = "departamento"
	SortByHireDate   SortField = "fechaIngreso"
	SortByUpdatedAt  SortField = "ultimaActualizacion"
	SortByStatus     SortField = "estado"
)

// Direction は並び順です。
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 1000
)

// FieldQuery はフィールド単位の条件です。
type FieldQuery struct {
	Field    Field    `json:"campo"`
	Value    string   `json:"valor"`
	Operator Operator `json:"operador,omitempty"`
}

// DateRange は両端を含む期間です。未指定の端は無制限です。
type DateRange struct {
	From *time.Time `json:"desde,omitempty"`
	To   *time.Time `json:"hasta,omitempty"`
}

// IsZero は両端とも未指定かを判定します。
func (r DateRange) IsZero() bool { return r.From == nil && r.To == nil }

// Sort は並び替え指定です。
type Sort struct {
	Field     SortField `json:"campo" validate:"oneof=id nombre apellido email cargo departamento fechaIngreso ultimaActualizacion estado"`
	Direction Direction `json:"direccion,omitempty" validate:"omitempty,oneof=asc desc"`
}

// Pagination はページ指定です。Page は 1 始まりです。
type Pagination struct {
	Page int `json:"pagina" validate:"gte=1"`
	Size int `json:"tamanio" validate:"gte=1,lte=1000"`
}

// Criteria はリクエスト単位で組み立てる検索条件です。
type Criteria struct {
	Term         string       `json:"texto,omitempty"`
	FieldQueries []FieldQuery `json:"camposBusqueda,omitempty"`

	Status      string   `json:"estado,omitempty"`
	Statuses    []string `json:"estados,omitempty"`
	Department  string   `json:"departamento,omitempty"`
	Departments []string `json:"departamentos,omitempty"`
	Titles      []string `json:"cargos,omitempty"`

	HireDate  DateRange `json:"fechaIngreso,omitempty"`
	UpdatedAt DateRange `json:"ultimaActualizacion,omitempty"`

	ConflictOnly     bool `json:"soloConflicto,omitempty"`
	ActiveOnly       bool `json:"soloActivos,omitempty"`
	InactiveOnly     bool `json:"soloInactivos,omitempty"`
	ExcludeSuspended bool `json:"excluirSuspendidos,omitempty"`

	// ExtendedSearch は自由語検索で値オブジェクトの照合（頭文字・語単位）を使います。
	ExtendedSearch bool `json:"busquedaExtendida,omitempty"`

	Sort *Sort       `json:"orden,omitempty"`
	Page *Pagination `json:"paginacion,omitempty"`
}

// IsEmpty は絞り込み条件が 1 つもないかを判定します。並び替えとページングは含みません。
func (c Criteria) IsEmpty() bool {
	return c.Term == "" &&
		len(c.FieldQueries) == 0 &&
		c.Status == "" && len(c.Statuses) == 0 &&
		c.Department == "" && len(c.Departments) == 0 &&
		len(c.Titles) == 0 &&
		c.HireDate.IsZero() && c.UpdatedAt.IsZero() &&
		!c.ConflictOnly && !c.ActiveOnly && !c.InactiveOnly && !c.ExcludeSuspended
}
