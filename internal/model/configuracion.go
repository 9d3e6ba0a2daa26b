package model

// Configuration keys.
const (
	ConfToleranciaMinutos = "tolerancia_minutos"
	ConfCapacidadMaxima   = "capacidad_maxima"
	ConfPrecioDefault     = "precio_default"
	ConfEmailReportes     = "email_reportes"
)

// Configuracion is a key/value business setting editable by an admin.
type Configuracion struct {
	Clave       string `gorm:"type:varchar(50);primaryKey"`
	Valor       string `gorm:"not null"`
	Descripcion string
}

func (Configuracion) TableName() string { return "configuracion" }

// ConfiguracionInicial is seeded on startup; existing values are never overwritten.
var ConfiguracionInicial = []Configuracion{
	{Clave: ConfToleranciaMinutos, Valor: "60", Descripcion: "Minutos de tolerancia antes de cobrar penalidad"},
	{Clave: ConfCapacidadMaxima, Valor: "50", Descripcion: "Capacidad máxima de vehículos"},
	{Clave: ConfPrecioDefault, Valor: "10", Descripcion: "Precio por día por defecto"},
	{Clave: ConfEmailReportes, Valor: "", Descripcion: "Correo que recibe el reporte de cierre de turno"},
}
