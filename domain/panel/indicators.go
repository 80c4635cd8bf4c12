package panel

import "stabcast/domain/core"

// Raw indicator vocabulary. Names follow the snake_case convention of the
// source statistical series; ingestion adapters map provider column codes
// onto these keys so the rest of the pipeline never sees provider naming.
const (
	IndGDPGrowth           core.FeatureKey = "gdp_growth"
	IndGDPPerCapita        core.FeatureKey = "gdp_per_capita"
	IndGDPPerCapitaGrowth  core.FeatureKey = "gdp_per_capita_growth"
	IndPopulation          core.FeatureKey = "population"
	IndPopulationGrowth    core.FeatureKey = "population_growth"
	IndTradeGDP            core.FeatureKey = "trade_gdp"
	IndExportsGDP          core.FeatureKey = "exports_gdp"
	IndImportsGDP          core.FeatureKey = "imports_gdp"
	IndFDINetInflows       core.FeatureKey = "fdi_net_inflows_gdp"
	IndGrossInvestment     core.FeatureKey = "gross_investment_gdp"
	IndGrossSavings        core.FeatureKey = "gross_savings_gdp"
	IndDomesticCredit      core.FeatureKey = "domestic_credit_private_gdp"
	IndRealInterestRate    core.FeatureKey = "real_interest_rate"
	IndGovernmentDebt      core.FeatureKey = "government_debt_gdp"
	IndUnemployment        core.FeatureKey = "unemployment_total"
	IndUrbanPopulation     core.FeatureKey = "urban_population_pct"
	IndResearchDevelopment core.FeatureKey = "research_development_gdp"
	IndInternetUsers       core.FeatureKey = "internet_users_pct"
	IndPatentApplications  core.FeatureKey = "patent_applications_residents"
)

// CoreIndicators are the indicators the feature engine derives temporal
// features from (lags, rolling statistics).
func CoreIndicators() []core.FeatureKey {
	return []core.FeatureKey{
		IndGDPGrowth,
		IndGDPPerCapita,
		IndTradeGDP,
		IndFDINetInflows,
		IndGrossInvestment,
		IndDomesticCredit,
		IndUnemployment,
	}
}

// AllIndicators returns the full documented vocabulary
func AllIndicators() []core.FeatureKey {
	return []core.FeatureKey{
		IndGDPGrowth, IndGDPPerCapita, IndGDPPerCapitaGrowth,
		IndPopulation, IndPopulationGrowth,
		IndTradeGDP, IndExportsGDP, IndImportsGDP,
		IndFDINetInflows, IndGrossInvestment, IndGrossSavings,
		IndDomesticCredit, IndRealInterestRate, IndGovernmentDebt,
		IndUnemployment, IndUrbanPopulation,
		IndResearchDevelopment, IndInternetUsers, IndPatentApplications,
	}
}

// ProviderColumnMap maps external statistical-source column codes to the
// vocabulary above. Ingestion uses this to standardize headers; unknown
// columns pass through lowercased so hand-built files keep working.
var ProviderColumnMap = map[string]core.FeatureKey{
	"NY.GDP.MKTP.KD.ZG":    IndGDPGrowth,
	"NY.GDP.PCAP.KD":       IndGDPPerCapita,
	"NY.GDP.PCAP.KD.ZG":    IndGDPPerCapitaGrowth,
	"SP.POP.GROW":          IndPopulationGrowth,
	"NE.TRD.GNFS.ZS":       IndTradeGDP,
	"NE.EXP.GNFS.ZS":       IndExportsGDP,
	"NE.IMP.GNFS.ZS":       IndImportsGDP,
	"BX.KLT.DINV.WD.GD.ZS": IndFDINetInflows,
	"NE.GDI.TOTL.ZS":       IndGrossInvestment,
	"NY.GNS.ICTR.ZS":       IndGrossSavings,
	"FS.AST.DOMS.GD.ZS":    IndDomesticCredit,
	"FR.INR.RINR":          IndRealInterestRate,
	"GC.DOD.TOTL.GD.ZS":    IndGovernmentDebt,
	"SL.UEM.TOTL.ZS":       IndUnemployment,
	"SP.URB.TOTL.IN.ZS":    IndUrbanPopulation,
	"GB.XPD.RSDV.GD.ZS":    IndResearchDevelopment,
	"IT.NET.USER.ZS":       IndInternetUsers,
	"IP.PAT.RESD":          IndPatentApplications,
}
