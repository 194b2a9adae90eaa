package domain

import "strings"

// LegalProfile holds the supplementary legal data a party must provide before
// a contract can be generated for them. The JSON names double as the request
// payload keys.
type LegalProfile struct {
	RG                 string `json:"rg"`
	OrgaoExpeditor     string `json:"orgao_expeditor"`
	UFRG               string `json:"uf_rg"`
	Nacionalidade      string `json:"nacionalidade"`
	EstadoCivil        string `json:"estado_civil"`
	Profissao          string `json:"profissao"`
	EnderecoLogradouro string `json:"endereco_logradouro"`
	EnderecoNumero     string `json:"endereco_numero"`
	EnderecoBairro     string `json:"endereco_bairro"`
	EnderecoCidade     string `json:"endereco_cidade"`
	EnderecoUF         string `json:"endereco_uf"`
	EnderecoCEP        string `json:"endereco_cep"`
}

func (p *LegalProfile) fields() []struct {
	name string
	ptr  *string
} {
	return []struct {
		name string
		ptr  *string
	}{
		{"rg", &p.RG},
		{"orgao_expeditor", &p.OrgaoExpeditor},
		{"uf_rg", &p.UFRG},
		{"nacionalidade", &p.Nacionalidade},
		{"estado_civil", &p.EstadoCivil},
		{"profissao", &p.Profissao},
		{"endereco_logradouro", &p.EnderecoLogradouro},
		{"endereco_numero", &p.EnderecoNumero},
		{"endereco_bairro", &p.EnderecoBairro},
		{"endereco_cidade", &p.EnderecoCidade},
		{"endereco_uf", &p.EnderecoUF},
		{"endereco_cep", &p.EnderecoCEP},
	}
}

// MissingFields returns the names of blank fields in declaration order.
func (p LegalProfile) MissingFields() []string {
	var missing []string
	for _, f := range p.fields() {
		if strings.TrimSpace(*f.ptr) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Merge overwrites fields of p with the non-blank fields of patch.
func (p *LegalProfile) Merge(patch LegalProfile) {
	src := patch.fields()
	for i, f := range p.fields() {
		if v := strings.TrimSpace(*src[i].ptr); v != "" {
			*f.ptr = v
		}
	}
}

// Address renders the structured address on one line, as
// "street, number, district, city, UF - CEP cep".
func (p LegalProfile) Address() string {
	return strings.Join([]string{
		p.EnderecoLogradouro + ", " + p.EnderecoNumero,
		p.EnderecoBairro,
		p.EnderecoCidade,
		p.EnderecoUF,
	}, ", ") + " - CEP " + p.EnderecoCEP
}
