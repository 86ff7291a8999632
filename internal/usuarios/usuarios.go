// =============================================================================
// XLSX Record Reader - Users and Roles Workbook
// =============================================================================
//
// The users-and-roles workbook has three sheets:
//
//   Usuarios (header row 2, data from row 3)
//   | A                 | B               | C                   | D         | E           | F                | G           |
//   |-------------------|-----------------|---------------------|-----------|-------------|------------------|-------------|
//   | Nombre de usuario | Nombre completo | Fecha de nacimiento | Categoria | Esta activo | Fecha de bloqueo | Comentarios |
//
//   Roles (header row 1, data from row 2)
//   | Nombre de rol |
//
//   UsuariosRoles (header row 1, data from row 2)
//   | Nombre de usuario | Nombre de rol |
//
// Fecha de bloqueo and Comentarios are optional; every other column is
// required. Categoria holds a Categoria name (Junior, SemiSenior, Senior,
// Especialista) or its number.
//
// CUSTOMIZATION:
//   Row positions can be moved per sheet with WithRows, which is how the
//   `sheets` section of the main configuration is applied.
//
// =============================================================================

package usuarios

import (
	"fmt"
	"time"

	"github.com/ginjaninja78/xlsx-record-reader/internal/xlsxreader"
)

// Sheet names.
const (
	SheetUsuarios      = "Usuarios"
	SheetRoles         = "Roles"
	SheetUsuariosRoles = "UsuariosRoles"
)

// =============================================================================
// CATEGORIA
// =============================================================================

// Categoria is the seniority of a user.
type Categoria int

const (
	Junior       Categoria = 1
	SemiSenior   Categoria = 2
	Senior       Categoria = 3
	Especialista Categoria = 4
)

// Categorias is the enumeration used to read the Categoria column.
var Categorias = xlsxreader.NewEnumType("Categoria",
	xlsxreader.EnumMember[Categoria]{Name: "Junior", Value: Junior},
	xlsxreader.EnumMember[Categoria]{Name: "SemiSenior", Value: SemiSenior},
	xlsxreader.EnumMember[Categoria]{Name: "Senior", Value: Senior},
	xlsxreader.EnumMember[Categoria]{Name: "Especialista", Value: Especialista},
)

func (c Categoria) String() string {
	if name, ok := Categorias.Name(c); ok {
		return name
	}
	return fmt.Sprintf("Categoria(%d)", int(c))
}

// MarshalText writes the member name into reports.
func (c Categoria) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// =============================================================================
// RECORDS
// =============================================================================

// Usuario is one row of the Usuarios sheet.
type Usuario struct {
	NombreDeUsuario string     `json:"nombre_de_usuario" yaml:"nombre_de_usuario" xml:"NombreDeUsuario"`
	NombreCompleto  string     `json:"nombre_completo" yaml:"nombre_completo" xml:"NombreCompleto"`
	FechaNacimiento time.Time  `json:"fecha_nacimiento" yaml:"fecha_nacimiento" xml:"FechaNacimiento"`
	Categoria       Categoria  `json:"categoria" yaml:"categoria" xml:"Categoria"`
	EstaActivo      bool       `json:"esta_activo" yaml:"esta_activo" xml:"EstaActivo"`
	FechaDeBloqueo  *time.Time `json:"fecha_de_bloqueo,omitempty" yaml:"fecha_de_bloqueo,omitempty" xml:"FechaDeBloqueo,omitempty"`
	Comentarios     *string    `json:"comentarios,omitempty" yaml:"comentarios,omitempty" xml:"Comentarios,omitempty"`
}

// Rol is one row of the Roles sheet.
type Rol struct {
	NombreDeRol string `json:"nombre_de_rol" yaml:"nombre_de_rol" xml:"NombreDeRol"`
}

// UsuarioRol is one row of the UsuariosRoles sheet.
type UsuarioRol struct {
	NombreDeUsuario string `json:"nombre_de_usuario" yaml:"nombre_de_usuario" xml:"NombreDeUsuario"`
	NombreDeRol     string `json:"nombre_de_rol" yaml:"nombre_de_rol" xml:"NombreDeRol"`
}

func decodeUsuario(r *xlsxreader.Row) Usuario {
	var u Usuario
	if v := xlsxreader.Text(r, 1, "Nombre de usuario", xlsxreader.Required); v != nil {
		u.NombreDeUsuario = *v
	}
	if v := xlsxreader.Text(r, 2, "Nombre completo", xlsxreader.Required); v != nil {
		u.NombreCompleto = *v
	}
	if v := xlsxreader.Value(r, 3, "Fecha de nacimiento", xlsxreader.Required, xlsxreader.Date); v != nil {
		u.FechaNacimiento = *v
	}
	if v := xlsxreader.Enum(r, 4, "Categoría", xlsxreader.Required, Categorias); v != nil {
		u.Categoria = *v
	}
	if v := xlsxreader.Value(r, 5, "Está activo", xlsxreader.Required, xlsxreader.Bool); v != nil {
		u.EstaActivo = *v
	}
	u.FechaDeBloqueo = xlsxreader.Value(r, 6, "Fecha de bloqueo", xlsxreader.Optional, xlsxreader.Date)
	u.Comentarios = xlsxreader.Text(r, 7, "Comentarios", xlsxreader.Optional)
	return u
}

func decodeRol(r *xlsxreader.Row) Rol {
	var rol Rol
	if v := xlsxreader.Text(r, 1, "Nombre de rol", xlsxreader.Required); v != nil {
		rol.NombreDeRol = *v
	}
	return rol
}

func decodeUsuarioRol(r *xlsxreader.Row) UsuarioRol {
	var ur UsuarioRol
	if v := xlsxreader.Text(r, 1, "Nombre de usuario", xlsxreader.Required); v != nil {
		ur.NombreDeUsuario = *v
	}
	if v := xlsxreader.Text(r, 2, "Nombre de rol", xlsxreader.Required); v != nil {
		ur.NombreDeRol = *v
	}
	return ur
}

// =============================================================================
// LAYOUT
// =============================================================================

// Layout is the xlsxreader.Layout of the users-and-roles workbook.
type Layout struct {
	Usuarios      *xlsxreader.Sheet[Usuario]
	Roles         *xlsxreader.Sheet[Rol]
	UsuariosRoles *xlsxreader.Sheet[UsuarioRol]
}

type rowOverride struct {
	headerRow    int
	firstDataRow int
}

// LayoutOption adjusts the layout built by NewLayout.
type LayoutOption func(map[string]rowOverride)

// WithRows moves the header row and first data row of one sheet. Zero keeps
// the built-in value.
func WithRows(sheet string, headerRow, firstDataRow int) LayoutOption {
	return func(m map[string]rowOverride) {
		m[sheet] = rowOverride{headerRow: headerRow, firstDataRow: firstDataRow}
	}
}

// NewLayout builds the layout. It fails when an option names an unknown sheet
// or sets an invalid row.
func NewLayout(opts ...LayoutOption) (*Layout, error) {
	overrides := make(map[string]rowOverride)
	for _, opt := range opts {
		opt(overrides)
	}
	for name := range overrides {
		switch name {
		case SheetUsuarios, SheetRoles, SheetUsuariosRoles:
		default:
			return nil, &xlsxreader.ConfigError{Sheet: name, Reason: "not part of the users-and-roles workbook"}
		}
	}

	usuarios, err := newSheet(xlsxreader.SheetSpec{
		Name: SheetUsuarios,
		Headers: []string{
			"Nombre de usuario", "Nombre completo", "Fecha de nacimiento",
			"Categoria", "Esta activo", "Fecha de bloqueo", "Comentarios",
		},
		HeaderRow:    2,
		FirstDataRow: 3,
	}, decodeUsuario, overrides)
	if err != nil {
		return nil, err
	}

	roles, err := newSheet(xlsxreader.SheetSpec{
		Name:    SheetRoles,
		Headers: []string{"Nombre de rol"},
	}, decodeRol, overrides)
	if err != nil {
		return nil, err
	}

	usuariosRoles, err := newSheet(xlsxreader.SheetSpec{
		Name:    SheetUsuariosRoles,
		Headers: []string{"Nombre de usuario", "Nombre de rol"},
	}, decodeUsuarioRol, overrides)
	if err != nil {
		return nil, err
	}

	return &Layout{Usuarios: usuarios, Roles: roles, UsuariosRoles: usuariosRoles}, nil
}

func newSheet[R any](spec xlsxreader.SheetSpec, decode func(*xlsxreader.Row) R, overrides map[string]rowOverride) (*xlsxreader.Sheet[R], error) {
	s, err := xlsxreader.NewSheet(spec, decode)
	if err != nil {
		return nil, err
	}
	if o, ok := overrides[spec.Name]; ok {
		return s.WithRows(o.headerRow, o.firstDataRow)
	}
	return s, nil
}

// Sheets implements xlsxreader.Layout.
func (l *Layout) Sheets() []xlsxreader.SheetReader {
	return []xlsxreader.SheetReader{l.Usuarios, l.Roles, l.UsuariosRoles}
}

// =============================================================================
// TYPED VIEW
// =============================================================================

// Book holds the valid records of one users-and-roles workbook.
type Book struct {
	Usuarios      []Usuario
	Roles         []Rol
	UsuariosRoles []UsuarioRol
}

// Extract collects the typed records from a workbook result. Sheets that were
// not read yield no records.
func Extract(res xlsxreader.WorkbookResult) Book {
	var b Book
	b.Usuarios, _ = xlsxreader.Records[Usuario](res, SheetUsuarios)
	b.Roles, _ = xlsxreader.Records[Rol](res, SheetRoles)
	b.UsuariosRoles, _ = xlsxreader.Records[UsuarioRol](res, SheetUsuariosRoles)
	return b
}

// RoleNames returns the role names in sheet order.
func (b Book) RoleNames() []string {
	out := make([]string, len(b.Roles))
	for i, r := range b.Roles {
		out[i] = r.NombreDeRol
	}
	return out
}
