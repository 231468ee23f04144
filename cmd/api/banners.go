package main

type banner struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	ImageURL string `json:"imageUrl"`
	Link     string `json:"link"`
	CTAText  string `json:"ctaText"`
}

var defaultBanners = []banner{
	{
		ID:       "1",
		Title:    "Navidad Gamer",
		Subtitle: "Descuentos increíbles en toda la tienda. ¡Regala tecnología!",
		ImageURL: "https://rematesalinas.com.pe/wp-content/uploads/2025/11/Navidad-Portada-web.png",
		Link:     "/catalogo",
		CTAText:  "Ver Ofertas",
	},
	{
		ID:       "2",
		Title:    "Arma tu PC",
		Subtitle: "Los mejores componentes para construir el setup de tus sueños.",
		ImageURL: "https://rematesalinas.com.pe/wp-content/uploads/2024/07/arma-tu-pc.png",
		Link:     "/catalogo/componentes",
		CTAText:  "Cotizar Ahora",
	},
}
