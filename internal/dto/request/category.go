package request

type CategoryRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Type  string `json:"type" validate:"required,oneof=ingreso gasto"`
	Color string `json:"color" validate:"omitempty,hexcolor6"`
}
